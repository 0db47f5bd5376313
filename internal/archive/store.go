// Package archive keeps a copy of every lead document that reached the
// sales desk.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"github.com/wolfman30/autolead-platform/pkg/logging"
)

// S3API is the subset of the S3 client used by Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// LeadRecord is one sent lead.
type LeadRecord struct {
	ID         uuid.UUID
	Workflow   string
	Subject    string
	Recipients []string
	SentAt     time.Time
	Document   []byte
}

// ManifestEntry is one JSONL line of the monthly manifest.
type ManifestEntry struct {
	LeadID     string   `json:"lead_id"`
	Workflow   string   `json:"workflow"`
	Subject    string   `json:"subject"`
	Recipients []string `json:"recipients"`
	S3Key      string   `json:"s3_key"`
	SentAt     string   `json:"sent_at"`
}

// Store archives lead documents to S3.
type Store struct {
	bucket   string
	s3Client S3API
	logger   *logging.Logger

	// serializes manifest read-modify-write within this process
	manifestMu sync.Mutex
}

// NewStore creates an archive Store. If bucket is empty, all operations are no-ops.
func NewStore(s3Client S3API, bucket string, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{bucket: bucket, s3Client: s3Client, logger: logger}
}

// Enabled returns true if archival is configured (bucket is set).
func (s *Store) Enabled() bool {
	return s != nil && s.bucket != "" && s.s3Client != nil
}

// LeadKey is the object key for a record.
func LeadKey(rec *LeadRecord) string {
	t := rec.SentAt.UTC()
	return fmt.Sprintf("leads/v1/by-date/%d/%02d/%02d/%s/%s.xml",
		t.Year(), t.Month(), t.Day(), rec.Workflow, rec.ID)
}

// ArchiveLead writes the document and appends it to the monthly manifest.
// It returns the object key, or "" when archival is disabled.
func (s *Store) ArchiveLead(ctx context.Context, rec *LeadRecord) (string, error) {
	if !s.Enabled() {
		return "", nil
	}
	if rec == nil || len(rec.Document) == 0 {
		return "", errors.New("archive: empty lead record")
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.SentAt.IsZero() {
		rec.SentAt = time.Now().UTC()
	}

	key := LeadKey(rec)
	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(rec.Document),
		ContentType: aws.String("application/xml"),
		Metadata: map[string]string{
			"workflow": rec.Workflow,
			"lead-id":  rec.ID.String(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("archive: s3 put %s: %w", key, err)
	}
	s.logger.Info("archived lead to S3", "lead_id", rec.ID.String(), "workflow", rec.Workflow, "s3_key", key)

	entry := ManifestEntry{
		LeadID:     rec.ID.String(),
		Workflow:   rec.Workflow,
		Subject:    rec.Subject,
		Recipients: rec.Recipients,
		S3Key:      key,
		SentAt:     rec.SentAt.UTC().Format(time.RFC3339),
	}
	if err := s.AppendManifest(ctx, rec.SentAt, entry); err != nil {
		// the document itself is stored
		s.logger.Warn("failed to append manifest", "error", err, "lead_id", rec.ID.String())
	}
	return key, nil
}

// AppendManifest appends a JSONL line to the monthly manifest file.
// Uses read-modify-write since S3 doesn't support append.
func (s *Store) AppendManifest(ctx context.Context, at time.Time, entry ManifestEntry) error {
	if !s.Enabled() {
		return nil
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("archive: marshal manifest entry: %w", err)
	}

	at = at.UTC()
	manifestKey := fmt.Sprintf("leads/v1/manifests/%d-%02d.jsonl", at.Year(), at.Month())

	s.manifestMu.Lock()
	defer s.manifestMu.Unlock()

	var existing []byte
	getResp, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(manifestKey),
	})
	switch {
	case err == nil:
		existing, _ = io.ReadAll(getResp.Body)
		getResp.Body.Close()
	case isNotFoundErr(err):
		s.logger.Debug("manifest not found, creating new", "key", manifestKey)
	default:
		return fmt.Errorf("archive: s3 get manifest: %w", err)
	}

	var buf bytes.Buffer
	if len(existing) > 0 {
		buf.Write(existing)
		if existing[len(existing)-1] != '\n' {
			buf.WriteByte('\n')
		}
	}
	buf.Write(line)
	buf.WriteByte('\n')

	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(manifestKey),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/x-ndjson"),
	})
	if err != nil {
		return fmt.Errorf("archive: s3 put manifest: %w", err)
	}
	return nil
}

// isNotFoundErr checks if the error is an S3 NoSuchKey error.
func isNotFoundErr(err error) bool {
	var nsk *s3types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "NoSuchKey") || strings.Contains(msg, "StatusCode: 404")
}
