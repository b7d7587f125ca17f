package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MacroTilt/pkg/config"
	xhttp "MacroTilt/pkg/http"
	applogger "MacroTilt/pkg/logger"
	"MacroTilt/pkg/scheduler"
)

type recordingCloser struct {
	name  string
	order *[]string
}

func (c recordingCloser) Close() error {
	*c.order = append(*c.order, c.name)
	return nil
}

type recordingDrainer struct{ drained bool }

func (d *recordingDrainer) Close(context.Context) error {
	d.drained = true
	return nil
}

func TestRunContextShutsDownInOrder(t *testing.T) {
	cfg := config.Default()
	cfg.Server.ShutdownTimeout = time.Second
	log := applogger.Nop()

	srv := xhttp.NewServer(nil, xhttp.WithHost("127.0.0.1"), xhttp.WithPort(0), xhttp.WithMetricsPath(""))
	var order []string
	drainer := &recordingDrainer{}
	app := New(cfg, log, srv,
		WithScheduler(scheduler.New(log)),
		WithDrainer(drainer),
		WithCloser("clickhouse", recordingCloser{name: "clickhouse", order: &order}),
		WithCloser("kafka", recordingCloser{name: "kafka", order: &order}),
		WithCloser("nil", nil),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.RunContext(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop")
	}
	assert.True(t, drainer.drained)
	assert.Equal(t, []string{"kafka", "clickhouse"}, order)
}
