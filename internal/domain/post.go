package domain

import (
	"strings"
	"time"
)

// UnknownStage is the reserved label for posts that could not be classified.
const UnknownStage = "Unknown"

// Post is a single social-media submission produced by the collector.
type Post struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	SelfText        string  `json:"selftext"`
	SelfTextHTML    string  `json:"selftext_html,omitempty"`
	Author          string  `json:"author,omitempty"`
	Subreddit       string  `json:"subreddit"`
	Score           int     `json:"score"`
	UpvoteRatio     float64 `json:"upvote_ratio,omitempty"`
	NumComments     int     `json:"num_comments"`
	CreatedUTC      float64 `json:"created_utc"`
	CreatedDatetime string  `json:"created_datetime,omitempty"`
	URL             string  `json:"url,omitempty"`
	Permalink       string  `json:"permalink,omitempty"`
	IsSelf          bool    `json:"is_self,omitempty"`
	Over18          bool    `json:"over_18,omitempty"`
	SearchKeyword   string  `json:"search_keyword"`
	CollectedAt     string  `json:"collected_at,omitempty"`
}

// CreatedAt converts the epoch seconds reported by the source.
func (p Post) CreatedAt() time.Time {
	sec := int64(p.CreatedUTC)
	nsec := int64((p.CreatedUTC - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec).UTC()
}

// FullText is the title and body joined by a space, used for sentiment and keyphrases.
func (p Post) FullText() string {
	return strings.TrimSpace(p.Title + " " + p.SelfText)
}

// ClassificationText is the title and body separated by a blank line, used as prompt input.
func (p Post) ClassificationText() string {
	return strings.TrimSpace(p.Title + "\n\n" + p.SelfText)
}

// FailureKind tells why a classification fell back to UnknownStage.
type FailureKind string

const (
	FailureNone              FailureKind = ""
	FailureOracleUnavailable FailureKind = "oracle_unavailable"
	FailureOracleRateLimited FailureKind = "oracle_rate_limited"
	FailureLabelMismatch     FailureKind = "label_mismatch"
	FailureEmptyText         FailureKind = "empty_text"
	FailureCancelled         FailureKind = "cancelled"
)

// ClassificationResult is the outcome of classifying one post.
type ClassificationResult struct {
	Stage       string      `json:"-"`
	RawResponse string      `json:"raw_response,omitempty"`
	Success     bool        `json:"success"`
	Failure     FailureKind `json:"failure,omitempty"`
	Err         error       `json:"-"`
}

// Unknown builds a failed result carrying the failure kind and cause.
func Unknown(kind FailureKind, raw string, err error) ClassificationResult {
	return ClassificationResult{
		Stage:       UnknownStage,
		RawResponse: raw,
		Failure:     kind,
		Err:         err,
	}
}

// EnrichedPost is a Post plus its journey stage, sentiment and derived text.
// Values are built once by the enricher and never modified afterwards.
type EnrichedPost struct {
	Post
	JourneyStage   string               `json:"journey_stage"`
	Sentiment      float64              `json:"sentiment"`
	FullText       string               `json:"full_text"`
	Classification ClassificationResult `json:"classification"`
}

// Keyphrase is a ranked 1-3 token phrase extracted from a corpus.
type Keyphrase struct {
	Phrase    string  `json:"phrase"`
	Relevance float64 `json:"relevance"`
}
