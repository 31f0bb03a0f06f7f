package llm

import "errors"

var (
	// ErrModelUnavailable means the summarization model could not be loaded or reached
	ErrModelUnavailable = errors.New("summarization model unavailable")

	// ErrInputTooLong means the input exceeds the model's token limit
	ErrInputTooLong = errors.New("input too long for summarization model")

	// ErrEmptyInput means there was no text to summarize
	ErrEmptyInput = errors.New("input text is empty")

	// ErrNoSummary means the model answered without a usable summary
	ErrNoSummary = errors.New("model returned no summary")
)
