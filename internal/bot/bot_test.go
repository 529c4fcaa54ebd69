package bot_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flemzord/tgupload/internal/bot"
	"github.com/flemzord/tgupload/internal/router"
	"github.com/flemzord/tgupload/internal/upload"
	"github.com/flemzord/tgupload/internal/upload/uploadtest"
	"github.com/flemzord/tgupload/pkg/message"
)

type fakeQueue struct {
	mu   sync.Mutex
	jobs []router.Job
	err  error
}

func (q *fakeQueue) Submit(job router.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

type fakeUploader struct {
	reqs []upload.Request
}

func (u *fakeUploader) Run(_ context.Context, req upload.Request) (upload.Result, error) {
	u.reqs = append(u.reqs, req)
	return upload.Result{JobID: req.JobID}, nil
}

type harness struct {
	handler  *bot.Handler
	rec      *uploadtest.Recorder
	queue    *fakeQueue
	uploader *fakeUploader
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		rec:      uploadtest.New(),
		queue:    &fakeQueue{},
		uploader: &fakeUploader{},
	}
	h.handler = bot.NewHandler(bot.Config{
		Messenger:   h.rec,
		Uploader:    h.uploader,
		Queue:       h.queue,
		BotUsername: func() string { return "upload_bot" },
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return h
}

func private(text string) message.InboundMessage {
	return message.InboundMessage{
		Sender: message.Sender{ID: 42},
		Chat:   message.Chat{ID: 42, Type: message.ChatDM},
		Text:   text,
	}
}

// runQueued executes every queued job in order.
func (h *harness) runQueued(t *testing.T) {
	t.Helper()
	for _, job := range h.queue.jobs {
		require.NoError(t, job.Run(context.Background()))
	}
}

func TestStartRepliesWithEscapedHelp(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	require.NoError(t, h.handler.Handle(private("/start")))

	texts := h.rec.Texts()
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], "Syntax: /upload &lt;path&gt;")
	assert.Contains(t, texts[0], "Hello! I can help you upload your local files to here.")
	assert.Empty(t, h.queue.jobs)
}

func TestUploadWithoutPath(t *testing.T) {
	t.Parallel()
	for _, text := range []string{"/upload", "/upload   ", "/folder"} {
		h := newHarness(t)
		require.NoError(t, h.handler.Handle(private(text)))
		assert.Equal(t, []string{bot.MissingPathText}, h.rec.Texts(), text)
		assert.Empty(t, h.queue.jobs, text)
	}
}

func TestUploadQueuesJob(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	require.NoError(t, h.handler.Handle(private("/upload /home/me/My Pictures/")))
	require.Len(t, h.queue.jobs, 1)

	job := h.queue.jobs[0]
	assert.Equal(t, int64(42), job.Lane)
	assert.Equal(t, "/home/me/My Pictures/", job.Path)
	assert.NotEmpty(t, job.ID)
	assert.Empty(t, h.rec.Calls(), "nothing is sent before the job runs")

	h.runQueued(t)
	require.Len(t, h.uploader.reqs, 1)
	req := h.uploader.reqs[0]
	assert.Equal(t, job.ID, req.JobID)
	assert.Equal(t, upload.Destination{ChatID: 42, Kind: upload.KindPrivate}, req.Origin)
	assert.Equal(t, "/home/me/My Pictures/", req.Path)
	assert.False(t, req.FolderOnly)
	assert.Zero(t, req.Target)
}

func TestFolderIsDirectoryOnly(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	msg := private("/folder /srv/backups")
	msg.Chat = message.Chat{ID: -1001, Type: message.ChatGroup}
	require.NoError(t, h.handler.Handle(msg))
	h.runQueued(t)

	require.Len(t, h.uploader.reqs, 1)
	assert.True(t, h.uploader.reqs[0].FolderOnly)
	assert.Equal(t, upload.KindGroup, h.uploader.reqs[0].Origin.Kind)
}

func TestToUsesTargetLane(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	require.NoError(t, h.handler.Handle(private("/to -1001234567890 /tmp/docs")))
	require.Len(t, h.queue.jobs, 1)
	assert.Equal(t, int64(-1001234567890), h.queue.jobs[0].Lane)

	h.runQueued(t)
	req := h.uploader.reqs[0]
	assert.Equal(t, int64(-1001234567890), req.Target)
	assert.Equal(t, int64(42), req.Origin.ChatID)
	assert.Equal(t, "/tmp/docs", req.Path)
}

func TestToRejectsMalformedArguments(t *testing.T) {
	t.Parallel()
	for _, text := range []string{"/to", "/to 555", "/to abc /tmp", "/to 0 /tmp"} {
		h := newHarness(t)
		require.NoError(t, h.handler.Handle(private(text)))
		require.Len(t, h.rec.Texts(), 1, text)
		assert.Contains(t, h.rec.Texts()[0], "/to &lt;chatId&gt; &lt;path&gt;", text)
		assert.Empty(t, h.queue.jobs, text)
	}
}

func TestBotUsernameSuffix(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	require.NoError(t, h.handler.Handle(private("/upload@Upload_Bot /tmp/a.txt")))
	require.NoError(t, h.handler.Handle(private("/upload@other_bot /tmp/b.txt")))

	require.Len(t, h.queue.jobs, 1)
	assert.Equal(t, "/tmp/a.txt", h.queue.jobs[0].Path)
}

func TestIgnoresPlainTextAndUnknownCommands(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	require.NoError(t, h.handler.Handle(private("hello there")))
	require.NoError(t, h.handler.Handle(private("/settings")))
	require.NoError(t, h.handler.Handle(private("/")))

	assert.Empty(t, h.rec.Calls())
	assert.Empty(t, h.queue.jobs)
}

func TestQueueFull(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.queue.err = router.ErrInboxFull

	require.NoError(t, h.handler.Handle(private("/upload /tmp")))
	assert.Equal(t, []string{bot.QueueFullText}, h.rec.Texts())
}

func TestQueueStopped(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.queue.err = router.ErrRouterStopped

	err := h.handler.Handle(private("/upload /tmp"))
	require.ErrorIs(t, err, router.ErrRouterStopped)
	assert.Empty(t, h.rec.Texts())
}

func TestCommandsMenu(t *testing.T) {
	t.Parallel()
	names := make([]string, 0, 4)
	for _, c := range bot.Commands() {
		assert.NotEmpty(t, c.Description)
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"start", "upload", "to", "folder"}, names)
}
