package http

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"

	"github.com/jhoicas/saas-backoffice/internal/application/dto"
)

// CompanyRateLimiter token bucket por empresa (company_id del token).
// Los limitadores viven en memoria del proceso y se crean al primer uso;
// Sweep/RunSweeper descartan los que ya recuperaron la ráfaga completa.
type CompanyRateLimiter struct {
	limit    rate.Limit
	burst    int
	limiters sync.Map // company_id -> *rate.Limiter
}

// NewCompanyRateLimiter perMinute solicitudes sostenidas por minuto con ráfaga burst.
// perMinute <= 0 desactiva el límite.
func NewCompanyRateLimiter(perMinute, burst int) *CompanyRateLimiter {
	l := rate.Inf
	if perMinute > 0 {
		l = rate.Limit(float64(perMinute) / 60)
	}
	if burst <= 0 {
		burst = 1
	}
	return &CompanyRateLimiter{limit: l, burst: burst}
}

func (r *CompanyRateLimiter) limiter(companyID string) *rate.Limiter {
	if v, ok := r.limiters.Load(companyID); ok {
		return v.(*rate.Limiter)
	}
	v, _ := r.limiters.LoadOrStore(companyID, rate.NewLimiter(r.limit, r.burst))
	return v.(*rate.Limiter)
}

// Allow consume un token de la empresa. Sin límite no se guarda estado.
func (r *CompanyRateLimiter) Allow(companyID string) bool {
	if r.limit == rate.Inf {
		return true
	}
	return r.limiter(companyID).Allow()
}

// Sweep elimina los limitadores con el bucket lleno en at (equivalen a uno recién creado).
// Devuelve cuántos eliminó.
func (r *CompanyRateLimiter) Sweep(at time.Time) int {
	removed := 0
	r.limiters.Range(func(key, value any) bool {
		if value.(*rate.Limiter).TokensAt(at) >= float64(r.burst) {
			r.limiters.CompareAndDelete(key, value)
			removed++
		}
		return true
	})
	return removed
}

// Len número de empresas con limitador en memoria.
func (r *CompanyRateLimiter) Len() int {
	n := 0
	r.limiters.Range(func(any, any) bool {
		n++
		return true
	})
	return n
}

// RunSweeper ejecuta Sweep cada interval hasta que ctx se cancele.
func (r *CompanyRateLimiter) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case at := <-ticker.C:
			r.Sweep(at)
		}
	}
}

// Middleware responde 429 cuando la empresa agota su cuota. Usar DESPUÉS de AuthMiddleware.
func (r *CompanyRateLimiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !r.Allow(GetCompanyID(c)) {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Code:    "RATE_LIMITED",
				Message: "demasiadas compras para esta empresa, intente más tarde",
			})
		}
		return c.Next()
	}
}
