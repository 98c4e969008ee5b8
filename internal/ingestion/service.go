package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/your-org/videogate/internal/airtable"
	"github.com/your-org/videogate/internal/grafana"
	"github.com/your-org/videogate/internal/revai"
	"github.com/your-org/videogate/pkg/storage/objectstore"
)

const defaultContentType = "video/quicktime"

// RecordUpserter synchronizes a title-keyed metadata record downstream.
type RecordUpserter interface {
	Upsert(ctx context.Context, title string, fields map[string]any) error
}

// EventSink ships structured log events to the telemetry endpoint.
type EventSink interface {
	Emit(ctx context.Context, event grafana.Event) error
}

// TranscriptionDispatcher submits a stored object for transcription.
type TranscriptionDispatcher interface {
	Submit(ctx context.Context, mediaURL, label string) (revai.Result, error)
}

// EventPublisher publishes upload events to the message bus.
type EventPublisher interface {
	Publish(ctx context.Context, key, value []byte, headers map[string]string) error
}

// Upload is one decoded multipart request: the file stream plus the three
// metadata fields. All fields are validated by the transport layer before the
// pipeline runs.
type Upload struct {
	File             io.Reader
	Size             int64
	ContentType      string
	Filename         string
	Title            string
	ScheduleDateTime string
	VideoType        string
}

// Result echoes the committed upload back to the caller.
type Result struct {
	Title            string
	ScheduleDateTime string
	VideoType        string
	ObjectKey        string
	R2URL            string
}

// Service drives the upload pipeline: store the object, upsert the record,
// dispatch transcription. The steps are strictly ordered and each is gated on
// the success of the previous one; each later payload embeds the public URL
// produced before the store write.
type Service struct {
	store       objectstore.Client
	records     RecordUpserter
	events      EventSink
	transcriber TranscriptionDispatcher
	producer    EventPublisher
	logger      *zap.Logger
	baseURL     string
	source      string
	clock       func() time.Time
	idGen       func() string
}

type Params struct {
	Store         objectstore.Client
	Records       RecordUpserter
	Events        EventSink
	Transcriber   TranscriptionDispatcher // nil disables the dispatch step
	Producer      EventPublisher          // nil disables the upload event
	Logger        *zap.Logger
	PublicBaseURL string
	Source        string
}

// NewService constructs the pipeline with explicit dependencies.
func NewService(p Params) *Service {
	return &Service{
		store:       p.Store,
		records:     p.Records,
		events:      p.Events,
		transcriber: p.Transcriber,
		producer:    p.Producer,
		logger:      p.Logger,
		baseURL:     p.PublicBaseURL,
		source:      p.Source,
		clock:       time.Now,
		idGen:       uuid.NewString,
	}
}

// Ingest runs the pipeline for one upload. On a metadata sync failure the
// already-stored object is left in place (*SyncError); on a transcription
// failure both object and record stay committed (*DispatchError).
func (s *Service) Ingest(ctx context.Context, up Upload) (*Result, error) {
	contentType := up.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}

	now := s.clock().UTC()
	objectKey := objectKeyFor(up.Title, up.Filename, now)
	r2URL := publicURLFor(s.baseURL, objectKey)

	if err := s.store.Put(ctx, objectKey, up.File, up.Size, contentType); err != nil {
		s.logEvent(ctx, grafana.LevelError, "R2 upload failed", map[string]any{
			"videoTitle": up.Title,
			"r2Url":      r2URL,
			"error":      err.Error(),
		})
		return nil, fmt.Errorf("put object %s: %w", objectKey, err)
	}

	s.logEvent(ctx, grafana.LevelInfo, "R2 upload success", map[string]any{
		"videoTitle":       up.Title,
		"r2Url":            r2URL,
		"videoType":        up.VideoType,
		"scheduleDateTime": up.ScheduleDateTime,
	})

	fields := map[string]any{
		"Schedule Date-Time":     up.ScheduleDateTime,
		"Video Type":             up.VideoType,
		"R2 URL":                 r2URL,
		"Video File Size":        humanSize(up.Size),
		"Video File Size Number": up.Size,
		"Content Type":           contentType,
		"Video Filename":         storedFilename(up.Title, up.Filename),
	}

	if err := s.records.Upsert(ctx, up.Title, fields); err != nil {
		status := 0
		message := err.Error()
		var upstream *airtable.UpstreamError
		if errors.As(err, &upstream) {
			status = upstream.Status
			message = upstream.Message
		}
		s.logEvent(ctx, grafana.LevelError, "Airtable Worker failed: "+message, map[string]any{
			"videoTitle":          up.Title,
			"r2Url":               r2URL,
			"videoType":           up.VideoType,
			"scheduleDateTime":    up.ScheduleDateTime,
			"airtableProxyStatus": status,
		})
		return nil, &SyncError{Status: status, Message: message}
	}

	s.logEvent(ctx, grafana.LevelInfo, "R2 upload + Airtable update success", map[string]any{
		"videoTitle":       up.Title,
		"r2Url":            r2URL,
		"videoType":        up.VideoType,
		"scheduleDateTime": up.ScheduleDateTime,
	})

	if s.transcriber != nil {
		res, err := s.transcriber.Submit(ctx, r2URL, up.Title)
		if err != nil {
			s.logEvent(ctx, grafana.LevelError, "Rev.ai submission failed", map[string]any{
				"videoTitle":  up.Title,
				"r2Url":       r2URL,
				"revaiStatus": res.Status,
				"revaiBody":   res.Body,
			})
			body := res.Body
			if body == "" {
				body = err.Error()
			}
			return nil, &DispatchError{Status: res.Status, Body: body}
		}
		s.logEvent(ctx, grafana.LevelInfo, "Rev.ai submission success", map[string]any{
			"videoTitle":  up.Title,
			"r2Url":       r2URL,
			"revaiStatus": res.Status,
		})
	}

	s.publishUploadEvent(ctx, up, objectKey, r2URL, contentType, now)

	return &Result{
		Title:            up.Title,
		ScheduleDateTime: up.ScheduleDateTime,
		VideoType:        up.VideoType,
		ObjectKey:        objectKey,
		R2URL:            r2URL,
	}, nil
}

// logEvent ships one structured event to the sink and waits for the attempt
// to finish, so events stay ordered relative to pipeline progress. Delivery
// failure is swallowed: it is noted locally and never alters the pipeline's
// outcome.
func (s *Service) logEvent(ctx context.Context, level, message string, meta map[string]any) {
	meta["source"] = s.source
	meta["service"] = "upload-video"
	if err := s.events.Emit(ctx, grafana.Event{Level: level, Message: message, Meta: meta}); err != nil {
		s.logger.Warn("log event delivery failed",
			zap.String("event_message", message),
			zap.Error(err))
	}
}

// publishUploadEvent is best effort: a bus outage must not fail an upload that
// is already fully committed downstream.
func (s *Service) publishUploadEvent(ctx context.Context, up Upload, objectKey, r2URL, contentType string, now time.Time) {
	if s.producer == nil {
		return
	}

	event := UploadEvent{
		ID:               s.idGen(),
		Title:            up.Title,
		ObjectKey:        objectKey,
		R2URL:            r2URL,
		SizeBytes:        up.Size,
		ContentType:      contentType,
		VideoType:        up.VideoType,
		ScheduleDateTime: up.ScheduleDateTime,
		UploadedAt:       now,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Warn("marshal upload event failed", zap.Error(err))
		return
	}

	headers := map[string]string{
		"event_type": "upload.completed",
	}
	if err := s.producer.Publish(ctx, []byte(up.Title), payload, headers); err != nil {
		s.logger.Warn("publish upload event failed",
			zap.String("object_key", objectKey),
			zap.Error(err))
	}
}

// Close releases underlying resources.
func (s *Service) Close(ctx context.Context) error {
	return s.store.Close()
}
