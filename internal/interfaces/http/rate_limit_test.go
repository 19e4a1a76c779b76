package http_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	apphttp "github.com/jhoicas/saas-backoffice/internal/interfaces/http"
)

// ── Limitador de compras por empresa ──────────────────────────────────────────

func TestRateLimiter_CuotaPorEmpresa(t *testing.T) {
	rl := apphttp.NewCompanyRateLimiter(1, 1)

	assert.True(t, rl.Allow("acme"))
	assert.False(t, rl.Allow("acme"))
	assert.True(t, rl.Allow("globex"), "cada empresa tiene su propio bucket")
	assert.Equal(t, 2, rl.Len())
}

func TestRateLimiter_SweepDescartaInactivos(t *testing.T) {
	rl := apphttp.NewCompanyRateLimiter(60, 1)
	assert.True(t, rl.Allow("acme"))

	assert.Zero(t, rl.Sweep(time.Now()), "bucket vacío: se conserva")
	assert.Equal(t, 1, rl.Len())

	assert.Equal(t, 1, rl.Sweep(time.Now().Add(2*time.Second)))
	assert.Zero(t, rl.Len())
	assert.True(t, rl.Allow("acme"))
}

func TestRateLimiter_SinLimiteNoGuardaEstado(t *testing.T) {
	rl := apphttp.NewCompanyRateLimiter(0, 0)
	for i := 0; i < 10; i++ {
		assert.True(t, rl.Allow("acme"))
	}
	assert.Zero(t, rl.Len())
}

func TestRateLimiter_RunSweeperTerminaConContexto(t *testing.T) {
	rl := apphttp.NewCompanyRateLimiter(60, 1)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		rl.RunSweeper(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunSweeper no terminó tras cancelar el contexto")
	}
}
