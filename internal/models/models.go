package models

// Section tags recognized by the segmenter. "unknown" is only emitted when no
// headings are detected at all.
const (
	SectionTitle            = "title"
	SectionAbstract         = "abstract"
	SectionIntroduction     = "introduction"
	SectionMethodology      = "methodology"
	SectionResults          = "results"
	SectionDiscussion       = "discussion"
	SectionConclusion       = "conclusion"
	SectionAcknowledgements = "acknowledgements"
	SectionReferences       = "references"
	SectionUnknown          = "unknown"
)

// Span is one named contiguous part of a document. Start and End are character
// offsets into the segmented text; Text is the span body without its heading line.
type Span struct {
	Section string
	Start   int
	End     int
	Text    string
}

// PaperInfo describes where a reference document came from.
type PaperInfo struct {
	Title  string `json:"title"`
	Link   string `json:"link"`
	Source string `json:"source"`
	Author string `json:"author"`
}

// SimilarityResult is the outcome of comparing the suspect text against one
// reference. Immutable once produced.
type SimilarityResult struct {
	ReferenceID        string     `json:"reference_id"`
	IsPlagiarized      bool       `json:"is_plagiarized"`
	OverallScore       float64    `json:"overall_score"`
	SemanticSimilarity float64    `json:"semantic_similarity"`
	NGramSimilarity    float64    `json:"ngram_similarity"`
	FuzzySimilarity    float64    `json:"fuzzy_similarity"`
	ReferenceText      string     `json:"reference_text"`
	Paper              *PaperInfo `json:"paper_info,omitempty"`
}

// AISectionResult is the classifier verdict for a single section.
type AISectionResult struct {
	AIProbability    float64 `json:"ai_probability"`
	HumanProbability float64 `json:"human_probability"`
	IsAIGenerated    bool    `json:"is_ai_generated"`
	Confidence       float64 `json:"confidence"`
	WordCount        int     `json:"word_count"`
}

// DocumentAIResult rolls per-section classifications up into one
// word-count-weighted document verdict.
type DocumentAIResult struct {
	OverallAIProbability    float64                    `json:"overall_ai_probability"`
	OverallHumanProbability float64                    `json:"overall_human_probability"`
	OverallIsAIGenerated    bool                       `json:"overall_is_ai_generated"`
	SectionResults          map[string]AISectionResult `json:"section_results"`
	SkippedSections         []string                   `json:"skipped_sections,omitempty"`
}

// ReferencePaper is a stored corpus document with its provenance.
type ReferencePaper struct {
	ID      string
	Title   string
	Author  string
	Source  string
	Link    string
	Content string
}

// CheckRequest is the JSON body accepted by the check endpoint.
type CheckRequest struct {
	PDFURL             string             `json:"pdf_url"`
	CheckOnlineSources bool               `json:"check_online_sources"`
	NumPapers          int                `json:"num_papers"`
	Thresholds         map[string]float64 `json:"thresholds,omitempty"`
	ReferenceTexts     []string           `json:"reference_texts,omitempty"`
}

// CheckResponse is the combined plagiarism and AI detection report.
type CheckResponse struct {
	Success                bool               `json:"success"`
	Message                string             `json:"message"`
	Sections               map[string]string  `json:"sections"`
	PlagiarismResults      []SimilarityResult `json:"plagiarism_results"`
	AIDetection            DocumentAIResult   `json:"ai_detection_results"`
	TotalWordCount         int                `json:"total_word_count"`
	PlagiarismOverallScore float64            `json:"plagiarism_overall_score"`
	HighestMatch           *SimilarityResult  `json:"highest_match,omitempty"`
	Timestamp              string             `json:"timestamp"`
}
