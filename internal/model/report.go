package model

import (
	"time"

	"github.com/nao1215/wordscraper/internal/index"
)

// RunReport is everything one wordscraper run produced.
// It travels through the pipeline; each step fills in its part.
type RunReport struct {
	// === Run parameters ===

	// Seed is the normalized seed URL.
	Seed string `json:"seed"`

	// Depth is the crawl depth budget.
	Depth int `json:"depth"`

	// MinLength is the minimum word length filter. 0 means unset.
	MinLength int `json:"min_length,omitempty"`

	// ExactLength is the exact word length filter. 0 means unset.
	ExactLength int `json:"exact_length,omitempty"`

	// Count is the number of words to select.
	Count int `json:"count"`

	// Mutate, Leet and Chars are the mutation flags.
	Mutate bool `json:"mutate"`
	Leet   bool `json:"leet"`
	Chars  bool `json:"chars"`

	// Targets are the words to search for. A non-empty list turns the run
	// into a search.
	Targets []string `json:"targets,omitempty"`

	// DateStarted is when the run began.
	DateStarted time.Time `json:"date_started"`

	// DateFinished is when the run ended. Zero while running.
	DateFinished time.Time `json:"date_finished"`

	// === Crawl ===

	// Visited is the number of URLs the crawl claimed.
	Visited int `json:"pages_visited"`

	// Pages lists the successfully fetched pages.
	Pages []Page `json:"pages,omitempty"`

	// Failed lists the claimed URLs that could not be fetched.
	Failed []FailedFetch `json:"failed,omitempty"`

	// Index is the word location index. Never serialized.
	Index *index.Index `json:"-"`

	// UniqueWords is the number of distinct words the crawl found.
	UniqueWords int `json:"unique_words"`

	// TimedOut is true when the crawl hit its maximum duration.
	TimedOut bool `json:"timed_out"`

	// === Results ===

	// Matched is the number of distinct words that passed the length filter.
	Matched int `json:"matched_words"`

	// Selected are the chosen words with their mutations, longest first.
	Selected []WordEntry `json:"words,omitempty"`

	// Search is the search outcome. Nil unless Targets is set.
	Search *SearchResult `json:"search,omitempty"`

	// PerformedSteps lists the pipeline steps that completed.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// Error is the error that ended the run early, if any.
	Error error `json:"-"`

	// ErrorMessage is Error as a string for serialization.
	ErrorMessage string `json:"error,omitempty"` //nolint:tagliatelle // error is conventional
}

// WordEntry is one selected word and its mutation set.
type WordEntry struct {
	Word string `json:"word"`

	// Mutations is the sorted mutation set, empty when mutation is off.
	// When present it contains Word itself.
	Mutations []string `json:"mutations,omitempty"`
}

// NewRunReport creates a report for a crawl of seed.
func NewRunReport(seed string, depth int) *RunReport {
	return &RunReport{
		Seed:        seed,
		Depth:       depth,
		DateStarted: time.Now(),
	}
}

// IsSearch reports whether the run is a search rather than a wordlist run.
func (r *RunReport) IsSearch() bool {
	return len(r.Targets) > 0
}

// SetError records err as the reason the run ended early.
func (r *RunReport) SetError(err error) {
	r.Error = err
	if err != nil {
		r.ErrorMessage = err.Error()
	}
}

// Finish stamps the end time.
func (r *RunReport) Finish() {
	r.DateFinished = time.Now()
}

// Duration returns how long the run took, or has taken so far.
func (r *RunReport) Duration() time.Duration {
	if r.DateFinished.IsZero() {
		return time.Since(r.DateStarted)
	}
	return r.DateFinished.Sub(r.DateStarted)
}

// AddStep records a completed pipeline step.
func (r *RunReport) AddStep(name string) {
	r.PerformedSteps = append(r.PerformedSteps, name)
}

// Lines returns the wordlist: each selected word immediately followed by
// its mutation set.
func (r *RunReport) Lines() []string {
	lines := make([]string, 0, len(r.Selected))
	for _, entry := range r.Selected {
		lines = append(lines, entry.Word)
		lines = append(lines, entry.Mutations...)
	}
	return lines
}

// SelectedWords returns the selected words without mutations.
func (r *RunReport) SelectedWords() []string {
	words := make([]string, len(r.Selected))
	for i, entry := range r.Selected {
		words[i] = entry.Word
	}
	return words
}
