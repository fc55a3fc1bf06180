package model

import (
	"crypto/sha256"
	"encoding/hex"
)

// Page summarizes one successfully fetched page.
// The body itself is not kept; only what the reports and history need.
type Page struct {
	// URL is the normalized URL that was requested.
	URL string `json:"url"`

	// StatusCode is the HTTP response status code.
	StatusCode int `json:"status_code"`

	// ContentType is the Content-Type of the response.
	ContentType string `json:"content_type,omitempty"`

	// Title is the page title extracted from the <title> tag.
	Title string `json:"title,omitempty"`

	// TokenCount is the number of word occurrences on the page.
	TokenCount int `json:"token_count"`

	// LinkCount is the number of distinct same-origin links on the page.
	LinkCount int `json:"link_count"`

	// Hash is the SHA-256 of the decoded body, used to spot duplicate
	// content served under different URLs.
	Hash string `json:"hash"`

	// FetchMillis is how long the fetch took in milliseconds.
	FetchMillis int64 `json:"fetch_ms"`
}

// FailedFetch records a claimed URL whose fetch or parse failed.
type FailedFetch struct {
	URL    string `json:"url"`
	Reason string `json:"reason"`
}

// HashContent returns the hex-encoded SHA-256 of content.
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
