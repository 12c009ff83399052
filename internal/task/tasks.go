package task

import (
	"encoding/json"
	"fmt"

	"github.com/fhuszti/vod-ms-go/internal/port"
	"github.com/hibiken/asynq"
)

const TypeTranscodeAsset = "vod:transcode"

// TranscodeAssetPayload is the body of a transcode job, both on the queue and
// over HTTP.
type TranscodeAssetPayload struct {
	AssetBucket string `json:"asset_bucket"`
	AssetObject string `json:"asset_object"`
	Reencode    bool   `json:"reencode"`
}

func payloadFromInput(in port.TranscodeInput) TranscodeAssetPayload {
	return TranscodeAssetPayload{AssetBucket: in.Bucket, AssetObject: in.Object, Reencode: in.Reencode}
}

// Input converts the payload back into a job description.
func (p TranscodeAssetPayload) Input() port.TranscodeInput {
	return port.TranscodeInput{Bucket: p.AssetBucket, Object: p.AssetObject, Reencode: p.Reencode}
}

// NewTranscodeAssetTask creates an Asynq task transcoding one source object.
func NewTranscodeAssetTask(in port.TranscodeInput) (*asynq.Task, error) {
	data, err := json.Marshal(payloadFromInput(in))
	if err != nil {
		return nil, fmt.Errorf("could not marshal transcode-asset payload: %w", err)
	}
	return asynq.NewTask(TypeTranscodeAsset, data), nil
}

// ParseTranscodeAssetPayload parses the task payload to TranscodeAssetPayload.
func ParseTranscodeAssetPayload(t *asynq.Task) (TranscodeAssetPayload, error) {
	var p TranscodeAssetPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return TranscodeAssetPayload{}, fmt.Errorf("could not unmarshal payload: %w", err)
	}
	return p, nil
}

// taskID is shared by every job for one source object; asynq rejects a second
// task with the same id until the first is deleted.
func taskID(in port.TranscodeInput) string {
	return "transcode:" + in.Bucket + "/" + in.Object
}
