// Package upload sends local files and directory trees to a chat: it
// walks the tree, uploads each file in order with a metadata caption,
// keeps a single progress message up to date, and finishes directory
// uploads to groups with a paginated index of links.
package upload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/flemzord/tgupload/internal/fsprobe"
	"github.com/flemzord/tgupload/internal/journal"
	"github.com/flemzord/tgupload/internal/metrics"
)

const tracerName = "github.com/flemzord/tgupload/internal/upload"

// Config holds the pipeline settings resolved from configuration.
type Config struct {
	// SizeLimit is the largest accepted file in bytes.
	SizeLimit uint64

	PrivateDelay time.Duration
	GroupDelay   time.Duration

	// LinkHost is the host of message deep links (t.me).
	LinkHost string

	// Exclude holds walker globs relative to the upload root.
	Exclude []string

	// IndexPageSize bounds one index message.
	IndexPageSize int
}

// PipelineConfig groups the pipeline dependencies.
type PipelineConfig struct {
	Config

	Messenger Messenger

	// FS defaults to the host filesystem.
	FS fsprobe.FS

	// Journal defaults to an in-memory store.
	Journal journal.Store

	Logger *slog.Logger

	// Now defaults to time.Now.
	Now func() time.Time

	// Sleep performs the pacing waits. Defaults to a timer wait.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Request is one upload invocation.
type Request struct {
	// JobID is generated when empty.
	JobID string

	// Origin is the chat the command came from.
	Origin Destination

	// Target, when non-zero, redirects the invocation to another chat.
	// It is resolved before the path is read.
	Target int64

	Path string

	// FolderOnly rejects paths that are files.
	FolderOnly bool
}

// Result summarizes a finished invocation.
type Result struct {
	JobID       string
	Destination Destination
	Status      journal.Status
	Discovered  int
	Uploaded    int
	Skipped     int
	Failed      int
	Bytes       uint64
	Index       []UploadedFile
}

// Pipeline runs upload invocations. A Pipeline is safe for concurrent use;
// callers serialize invocations that target the same chat.
type Pipeline struct {
	cfg    PipelineConfig
	walker *fsprobe.Walker
	pacer  *Pacer
	tracer trace.Tracer
}

// NewPipeline creates a pipeline with the given configuration.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	if cfg.FS == nil {
		cfg.FS = fsprobe.OS{}
	}
	if cfg.Journal == nil {
		cfg.Journal = journal.NewMemory()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.LinkHost == "" {
		cfg.LinkHost = "t.me"
	}
	if cfg.IndexPageSize <= 0 {
		cfg.IndexPageSize = DefaultIndexPageSize
	}
	return &Pipeline{
		cfg: cfg,
		walker: &fsprobe.Walker{
			FS:      cfg.FS,
			Limit:   cfg.SizeLimit,
			Exclude: cfg.Exclude,
			Logger:  cfg.Logger,
		},
		pacer: &Pacer{
			PrivateDelay: cfg.PrivateDelay,
			GroupDelay:   cfg.GroupDelay,
			Sleep:        cfg.Sleep,
		},
		tracer: otel.Tracer(tracerName),
	}
}

// SizeLimit returns the largest file size the pipeline uploads.
func (p *Pipeline) SizeLimit() uint64 {
	return p.cfg.SizeLimit
}

// Run executes one invocation. Expected failures (missing paths, skipped
// or rejected files, unreachable destinations) are reported in the chat
// and reflected in the Result. The returned error is non-nil only when the
// invocation was aborted.
func (p *Pipeline) Run(ctx context.Context, req Request) (Result, error) {
	if req.JobID == "" {
		req.JobID = uuid.NewString()
	}

	ctx, span := p.tracer.Start(ctx, "upload.job", trace.WithAttributes(
		attribute.String("upload.job_id", req.JobID),
		attribute.String("upload.path", req.Path),
		attribute.Int64("upload.origin_chat_id", req.Origin.ChatID),
	))
	defer span.End()

	r := &run{
		p:      p,
		req:    req,
		dest:   req.Origin,
		logger: p.cfg.Logger.With("job", req.JobID, "path", req.Path),
	}
	r.result.JobID = req.JobID

	err := r.execute(ctx)
	r.finish(ctx, err)

	span.SetAttributes(
		attribute.Int64("upload.chat_id", r.dest.ChatID),
		attribute.Int("upload.discovered", r.result.Discovered),
		attribute.Int("upload.uploaded", r.result.Uploaded),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return r.result, err
}

// run carries the state of one invocation.
type run struct {
	p      *Pipeline
	req    Request
	dest   Destination
	logger *slog.Logger

	job      journal.Job
	progress int
	reason   string
	result   Result
}

func (r *run) execute(ctx context.Context) error {
	if r.req.Target != 0 && r.req.Target != r.req.Origin.ChatID {
		kind, err := r.p.cfg.Messenger.ResolveChat(ctx, r.req.Target)
		if err != nil {
			r.logger.Warn("destination unreachable", "chat_id", r.req.Target, "error", err)
			r.begin(ctx)
			r.reason = "destination unreachable"
			if _, sendErr := r.p.cfg.Messenger.SendText(ctx, r.req.Origin.ChatID,
				fmt.Sprintf("Couldn't find the chat <code>%d</code>.", r.req.Target)); sendErr != nil {
				return fmt.Errorf("upload: reporting unreachable destination: %w", sendErr)
			}
			return nil
		}
		r.dest = Destination{ChatID: r.req.Target, Kind: kind}
	}
	r.begin(ctx)

	progress, err := r.p.cfg.Messenger.SendText(ctx, r.dest.ChatID, "Reading path...")
	if err != nil {
		return fmt.Errorf("upload: sending progress message: %w", err)
	}
	r.progress = progress
	r.job.ProgressMessageID = progress

	info, err := fsprobe.Probe(r.p.cfg.FS, r.req.Path)
	switch {
	case errors.Is(err, fsprobe.ErrNotFound):
		return r.abandon(ctx, "not found", "File/Folder not found.")
	case err != nil:
		return err
	}

	if info.IsFile {
		if r.req.FolderOnly {
			return r.abandon(ctx, "not a folder", "Not a folder.")
		}
		return r.single(ctx, fsprobe.FileEntry{
			Name:      info.Name,
			Path:      info.Path,
			Size:      info.Size,
			CreatedAt: info.BirthTime,
		})
	}
	if !info.IsDir {
		return r.abandon(ctx, "not a regular file or folder", "File/Folder not found.")
	}

	files, err := r.p.walker.Walk(ctx, r.req.Path)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return r.abandon(ctx, "no files found", "No files found.")
	}
	return r.directory(ctx, files)
}

// abandon removes the progress message and replies with text.
func (r *run) abandon(ctx context.Context, reason, text string) error {
	r.reason = reason
	r.deleteProgress(ctx)
	return r.reply(ctx, text)
}

func (r *run) single(ctx context.Context, file fsprobe.FileEntry) error {
	r.result.Discovered = 1
	r.editProgress(ctx, fmt.Sprintf("Uploading <code>%s</code> from <code>%s</code>",
		Sanitize(file.Name), Sanitize(file.Path)))

	if _, err := r.send(ctx, file); err != nil {
		r.reason = "upload failed"
		if err := r.reply(ctx, fmt.Sprintf("Failed to upload <code>%s</code>.", Sanitize(file.Name))); err != nil {
			return err
		}
	}
	r.deleteProgress(ctx)
	return nil
}

func (r *run) directory(ctx context.Context, files []fsprobe.FileEntry) error {
	n := len(files)
	path := Sanitize(r.req.Path)
	r.result.Discovered = n

	r.editProgress(ctx, fmt.Sprintf("Uploading %d %s from <code>%s</code>", n, plural(n), path))
	bestEffort(r.logger, "pin", func() error {
		return r.p.cfg.Messenger.PinMessage(ctx, r.dest.ChatID, r.progress)
	})

	var uploaded []UploadedFile
	for i, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}

		if _, err := fsprobe.Probe(r.p.cfg.FS, file.Path); err != nil {
			if !errors.Is(err, fsprobe.ErrNotFound) {
				return err
			}
			r.record(ctx, file, journal.OutcomeSkipped, 0, "")
			if err := r.reply(ctx, fmt.Sprintf("'<code>%s</code>' not found. Skipping.\nPath: <code>%s</code>",
				Sanitize(file.Name), Sanitize(file.Path))); err != nil {
				return err
			}
			continue
		}

		// Group chats tolerate far fewer edits than private ones.
		if r.dest.Kind == KindPrivate {
			r.editProgress(ctx, fmt.Sprintf("Uploading [%d/%d] <code>%s</code> from <code>%s</code>",
				i+1, n, Sanitize(file.Name), path))
		}

		messageID, uploadErr := r.send(ctx, file)
		if err := r.p.pacer.Pause(ctx, r.dest.Kind); err != nil {
			return err
		}
		if uploadErr != nil {
			if err := r.reply(ctx, fmt.Sprintf("Failed to upload <code>%s</code>.", Sanitize(file.Name))); err != nil {
				return err
			}
			continue
		}
		if r.dest.Kind != KindPrivate {
			uploaded = append(uploaded, UploadedFile{
				Name: Sanitize(file.Name),
				Link: DeepLink(r.p.cfg.LinkHost, r.dest.ChatID, messageID),
			})
		}
	}

	r.editProgress(ctx, "Uploaded!")
	bestEffort(r.logger, "unpin", func() error {
		return r.p.cfg.Messenger.UnpinMessage(ctx, r.dest.ChatID, r.progress)
	})

	if len(uploaded) > 0 {
		r.result.Index = uploaded
		if first := r.sendIndex(ctx, uploaded); first != 0 {
			r.editProgress(ctx, fmt.Sprintf("Uploaded!\n<a href=\"%s\">See index</a>",
				DeepLink(r.p.cfg.LinkHost, r.dest.ChatID, first)))
		}
	}

	// The summary reports the discovered count, not the successes.
	return r.reply(ctx, fmt.Sprintf("<b>Successfully uploaded %d %s from</b> <code>%s</code>", n, plural(n), path))
}

// send uploads one file and records the outcome.
func (r *run) send(ctx context.Context, file fsprobe.FileEntry) (int, error) {
	ctx, span := r.p.tracer.Start(ctx, "upload.file", trace.WithAttributes(
		attribute.String("file.path", file.Path),
		attribute.Int64("file.size", int64(file.Size)),
	))
	defer span.End()

	messageID, err := r.p.cfg.Messenger.SendDocument(ctx, r.dest.ChatID, Document{
		Path:    file.Path,
		Name:    file.Name,
		Caption: Caption(file.Name, file.Path, file.Size, file.CreatedAt),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.logger.Error("upload failed", "file", file.Path, "error", err)
		r.record(ctx, file, journal.OutcomeFailed, 0, "")
		return 0, err
	}

	link := ""
	if r.dest.Kind != KindPrivate {
		link = DeepLink(r.p.cfg.LinkHost, r.dest.ChatID, messageID)
	}
	r.record(ctx, file, journal.OutcomeUploaded, messageID, link)
	return messageID, nil
}

// sendIndex posts the index pages and returns the id of the first one,
// or zero when none could be sent.
func (r *run) sendIndex(ctx context.Context, files []UploadedFile) int {
	first := 0
	for _, page := range BuildIndex(files, r.p.cfg.IndexPageSize) {
		id, err := r.p.cfg.Messenger.SendText(ctx, r.dest.ChatID, page)
		if err != nil {
			r.logger.Warn("sending index page failed", "error", err)
			return first
		}
		if first == 0 {
			first = id
		}
		if err := r.p.pacer.Pause(ctx, r.dest.Kind); err != nil {
			return first
		}
	}
	return first
}

func (r *run) reply(ctx context.Context, text string) error {
	if _, err := r.p.cfg.Messenger.SendText(ctx, r.dest.ChatID, text); err != nil {
		return fmt.Errorf("upload: sending reply: %w", err)
	}
	return nil
}

func (r *run) editProgress(ctx context.Context, text string) {
	bestEffort(r.logger, "edit progress", func() error {
		return r.p.cfg.Messenger.EditText(ctx, r.dest.ChatID, r.progress, text)
	})
}

func (r *run) deleteProgress(ctx context.Context) {
	bestEffort(r.logger, "delete progress", func() error {
		return r.p.cfg.Messenger.DeleteMessage(ctx, r.dest.ChatID, r.progress)
	})
}

// begin creates the journal entry once the destination is known.
func (r *run) begin(ctx context.Context) {
	r.result.Destination = r.dest
	r.job = journal.Job{
		ID:        r.req.JobID,
		ChatID:    r.dest.ChatID,
		Path:      r.req.Path,
		Status:    journal.StatusRunning,
		StartedAt: r.p.cfg.Now(),
	}
	if err := r.p.cfg.Journal.CreateJob(ctx, r.job); err != nil {
		r.logger.Warn("journal: creating job failed", "error", err)
	}
	r.logger.Info("upload started", "chat_id", r.dest.ChatID, "kind", r.dest.Kind.String())
}

func (r *run) record(ctx context.Context, file fsprobe.FileEntry, outcome journal.Outcome, messageID int, link string) {
	switch outcome {
	case journal.OutcomeUploaded:
		r.result.Uploaded++
		r.result.Bytes += file.Size
		metrics.RecordFile(metrics.ResultUploaded, file.Size)
	case journal.OutcomeSkipped:
		r.result.Skipped++
		metrics.RecordFile(metrics.ResultSkipped, file.Size)
	case journal.OutcomeFailed:
		r.result.Failed++
		metrics.RecordFile(metrics.ResultFailed, file.Size)
	}

	err := r.p.cfg.Journal.RecordFile(ctx, journal.File{
		JobID:     r.req.JobID,
		Name:      file.Name,
		Path:      file.Path,
		Size:      file.Size,
		Outcome:   outcome,
		MessageID: messageID,
		Link:      link,
		At:        r.p.cfg.Now(),
	})
	if err != nil {
		r.logger.Warn("journal: recording file failed", "file", file.Path, "error", err)
	}
}

// finish settles the job status and persists the final counts. A
// canceled context still gets its journal update.
func (r *run) finish(ctx context.Context, err error) {
	status := journal.StatusDone
	switch {
	case err != nil:
		status = journal.StatusFailed
		r.job.Error = err.Error()
	case r.reason != "":
		status = journal.StatusFailed
		r.job.Error = r.reason
	}
	r.result.Status = status

	r.job.Status = status
	r.job.FinishedAt = r.p.cfg.Now()
	r.job.Discovered = r.result.Discovered
	r.job.Uploaded = r.result.Uploaded
	r.job.Skipped = r.result.Skipped
	r.job.Failed = r.result.Failed
	r.job.Bytes = r.result.Bytes

	if jerr := r.p.cfg.Journal.UpdateJob(context.WithoutCancel(ctx), r.job); jerr != nil {
		r.logger.Warn("journal: finishing job failed", "error", jerr)
	}
	metrics.RecordJob(string(status))

	r.logger.Info("upload finished",
		"status", status,
		"discovered", r.result.Discovered,
		"uploaded", r.result.Uploaded,
		"skipped", r.result.Skipped,
		"failed", r.result.Failed,
	)
}
