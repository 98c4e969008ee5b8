package ingestion

import "time"

// UploadEvent is published to Kafka after the pipeline completes in full.
type UploadEvent struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	ObjectKey        string    `json:"object_key"`
	R2URL            string    `json:"r2_url"`
	SizeBytes        int64     `json:"size_bytes"`
	ContentType      string    `json:"content_type"`
	VideoType        string    `json:"video_type"`
	ScheduleDateTime string    `json:"schedule_date_time"`
	UploadedAt       time.Time `json:"uploaded_at"`
}
