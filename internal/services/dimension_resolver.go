package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sgacademico/etl-backend/internal/logger"
	"github.com/sgacademico/etl-backend/internal/repos"
)

// DimensionResolver maps natural business ids to surrogate keys, creating
// dimension rows on first sight. Repeated calls with the same natural id
// always return the same key, including under concurrent first-creation
// (the repo re-reads after a duplicate-key conflict).
type DimensionResolver interface {
	ResolveEstudiante(ctx context.Context, naturalID int64, nombre, email string) (uint, error)
	ResolveCurso(ctx context.Context, naturalID int64, nombre, codigo, docenteNombre, gradoNombre, seccionNombre string) (uint, error)
	ResolveDocente(ctx context.Context, naturalID int64, nombre, email string) (uint, error)
	ResolveGrado(ctx context.Context, naturalID int64, nombre string) (uint, error)
	ResolveSeccion(ctx context.Context, naturalID int64, nombre string) (uint, error)
	ResolveTiempo(ctx context.Context, fecha time.Time) (uint, error)
}

type dimensionResolver struct {
	repo repos.DimensionRepo
	log  *logger.Logger
}

func NewDimensionResolver(repo repos.DimensionRepo, baseLog *logger.Logger) DimensionResolver {
	return &dimensionResolver{
		repo: repo,
		log:  baseLog.With("service", "DimensionResolver"),
	}
}

func (s *dimensionResolver) ResolveEstudiante(ctx context.Context, naturalID int64, nombre, email string) (uint, error) {
	return s.repo.EnsureEstudiante(ctx, nil, naturalID, nombre, email)
}

func (s *dimensionResolver) ResolveCurso(ctx context.Context, naturalID int64, nombre, codigo, docenteNombre, gradoNombre, seccionNombre string) (uint, error) {
	return s.repo.EnsureCurso(ctx, nil, naturalID, nombre, codigo, docenteNombre, gradoNombre, seccionNombre)
}

func (s *dimensionResolver) ResolveDocente(ctx context.Context, naturalID int64, nombre, email string) (uint, error) {
	return s.repo.EnsureDocente(ctx, nil, naturalID, nombre, email)
}

func (s *dimensionResolver) ResolveGrado(ctx context.Context, naturalID int64, nombre string) (uint, error) {
	return s.repo.EnsureGrado(ctx, nil, naturalID, nombre)
}

func (s *dimensionResolver) ResolveSeccion(ctx context.Context, naturalID int64, nombre string) (uint, error) {
	return s.repo.EnsureSeccion(ctx, nil, naturalID, nombre)
}

func (s *dimensionResolver) ResolveTiempo(ctx context.Context, fecha time.Time) (uint, error) {
	return s.repo.EnsureTiempo(ctx, nil, fecha)
}

// NewRunResolverCache wraps a resolver with a cache scoped to one pipeline
// run. A transform pass over N rows would otherwise hit the dimension store
// up to N times per dimension; within a run the first resolution already
// applied the Type-1 refresh, so later hits can short-circuit. The cache is
// deliberately not shared across runs.
func NewRunResolverCache(inner DimensionResolver) DimensionResolver {
	return &runResolverCache{
		inner: inner,
		keys:  make(map[string]uint),
	}
}

type runResolverCache struct {
	inner DimensionResolver
	mu    sync.Mutex
	keys  map[string]uint
}

func (c *runResolverCache) cached(cacheKey string, resolve func() (uint, error)) (uint, error) {
	c.mu.Lock()
	if key, ok := c.keys[cacheKey]; ok {
		c.mu.Unlock()
		return key, nil
	}
	c.mu.Unlock()

	key, err := resolve()
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	c.keys[cacheKey] = key
	c.mu.Unlock()
	return key, nil
}

func (c *runResolverCache) ResolveEstudiante(ctx context.Context, naturalID int64, nombre, email string) (uint, error) {
	return c.cached(fmt.Sprintf("estudiante:%d", naturalID), func() (uint, error) {
		return c.inner.ResolveEstudiante(ctx, naturalID, nombre, email)
	})
}

func (c *runResolverCache) ResolveCurso(ctx context.Context, naturalID int64, nombre, codigo, docenteNombre, gradoNombre, seccionNombre string) (uint, error) {
	return c.cached(fmt.Sprintf("curso:%d", naturalID), func() (uint, error) {
		return c.inner.ResolveCurso(ctx, naturalID, nombre, codigo, docenteNombre, gradoNombre, seccionNombre)
	})
}

func (c *runResolverCache) ResolveDocente(ctx context.Context, naturalID int64, nombre, email string) (uint, error) {
	return c.cached(fmt.Sprintf("docente:%d", naturalID), func() (uint, error) {
		return c.inner.ResolveDocente(ctx, naturalID, nombre, email)
	})
}

func (c *runResolverCache) ResolveGrado(ctx context.Context, naturalID int64, nombre string) (uint, error) {
	return c.cached(fmt.Sprintf("grado:%d", naturalID), func() (uint, error) {
		return c.inner.ResolveGrado(ctx, naturalID, nombre)
	})
}

func (c *runResolverCache) ResolveSeccion(ctx context.Context, naturalID int64, nombre string) (uint, error) {
	return c.cached(fmt.Sprintf("seccion:%d", naturalID), func() (uint, error) {
		return c.inner.ResolveSeccion(ctx, naturalID, nombre)
	})
}

func (c *runResolverCache) ResolveTiempo(ctx context.Context, fecha time.Time) (uint, error) {
	return c.cached(fmt.Sprintf("tiempo:%s", fecha.Format("2006-01-02")), func() (uint, error) {
		return c.inner.ResolveTiempo(ctx, fecha)
	})
}
