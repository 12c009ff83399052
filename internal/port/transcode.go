package port

import "context"

// TranscodeInput is one transcode job: a source object and the encoding mode.
type TranscodeInput struct {
	Bucket   string
	Object   string
	Reencode bool
}

// TranscodeOutput describes the HLS asset a job produced.
type TranscodeOutput struct {
	Video string   `json:"video"`
	Files []string `json:"files"`
}

// TranscodeSubmitter hands a job to the transcode runner, wherever it runs.
type TranscodeSubmitter interface {
	SubmitTranscode(ctx context.Context, in TranscodeInput) error
}

// Transcoder turns a local media file into an HLS playlist plus segments
// inside outputDir and returns the playlist path.
type Transcoder interface {
	Run(ctx context.Context, inputPath, outputDir string, reencode bool) (string, error)
}
