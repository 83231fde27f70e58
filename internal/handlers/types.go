package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Response is the payload returned to the workflow by every handler.
type Response struct {
	StatusCode int `json:"statusCode"`
	Body       any `json:"body"`
}

func ok(body any) Response {
	return Response{StatusCode: 200, Body: body}
}

// FramesPerJob accepts both a JSON number and a numeric JSON string.
// The workflow passes it as a string.
type FramesPerJob int

func (n *FramesPerJob) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*n = 0
			return nil
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("framesPerJob: %w", err)
		}
		*n = FramesPerJob(v)
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("framesPerJob: %w", err)
	}
	*n = FramesPerJob(v)
	return nil
}

// MarshalJSON writes the string form used between workflow states.
func (n FramesPerJob) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.Itoa(int(n)))
}

// PipelineInput is the state passed along the workflow.
type PipelineInput struct {
	JobName          string       `json:"jobName"`
	InputURI         string       `json:"inputUri"`
	OutputURI        string       `json:"outputUri"`
	JobDefinitionArn string       `json:"jobDefinitionArn,omitempty"`
	JobQueueArn      string       `json:"jobQueueArn,omitempty"`
	FramesPerJob     FramesPerJob `json:"framesPerJob"`
}

// FetchRequest is the input of the fetch handler.
type FetchRequest struct {
	PipelineInput
}

// BlendFileRef is the result of the fetch state as stored by the workflow.
type BlendFileRef struct {
	BlendFile string `json:"blend_file"`
}

// CountFramesRequest is the input of the count frames handler.
type CountFramesRequest struct {
	PipelineInput
	BlendFile BlendFileRef `json:"blend_file"`
}

// CountFramesBody is the body of a successful count frames response.
type CountFramesBody struct {
	ArrayJobSize int `json:"arrayJobSize"`
	FrameCount   int `json:"frameCount"`
}

// ObjectCreated is the detail of an "Object Created" storage event.
type ObjectCreated struct {
	Bucket struct {
		Name string `json:"name"`
	} `json:"bucket"`
	Object struct {
		Key  string `json:"key"`
		Size int64  `json:"size"`
	} `json:"object"`
}
