package services

import (
	"context"
	"testing"
	"time"
)

func TestRunResolverCacheShortCircuitsRepeatedLookups(t *testing.T) {
	inner := newFakeResolver()
	cache := NewRunResolverCache(inner)
	ctx := context.Background()

	key1, err := cache.ResolveEstudiante(ctx, 7, "Ana Quispe", "ana@colegio.edu")
	if err != nil {
		t.Fatalf("ResolveEstudiante: %v", err)
	}
	key2, err := cache.ResolveEstudiante(ctx, 7, "Ana Quispe", "ana@colegio.edu")
	if err != nil {
		t.Fatalf("ResolveEstudiante: %v", err)
	}
	if key1 != key2 {
		t.Fatalf("same natural id must resolve to the same key: %d vs %d", key1, key2)
	}
	if inner.estudianteCalls != 1 {
		t.Fatalf("inner resolver hit %d times, want 1", inner.estudianteCalls)
	}

	other, err := cache.ResolveEstudiante(ctx, 8, "Jose Mamani", "jose@colegio.edu")
	if err != nil {
		t.Fatalf("ResolveEstudiante: %v", err)
	}
	if other == key1 {
		t.Fatalf("distinct natural ids must not share a surrogate key")
	}
	if inner.estudianteCalls != 2 {
		t.Fatalf("inner resolver hit %d times, want 2", inner.estudianteCalls)
	}
}

func TestRunResolverCacheKeysTiempoByDay(t *testing.T) {
	inner := newFakeResolver()
	cache := NewRunResolverCache(inner)
	ctx := context.Background()

	morning := time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2025, time.March, 10, 19, 0, 0, 0, time.UTC)
	nextDay := time.Date(2025, time.March, 11, 8, 0, 0, 0, time.UTC)

	k1, _ := cache.ResolveTiempo(ctx, morning)
	k2, _ := cache.ResolveTiempo(ctx, evening)
	k3, _ := cache.ResolveTiempo(ctx, nextDay)

	if k1 != k2 {
		t.Fatalf("same calendar day must share a tiempo_key")
	}
	if k1 == k3 {
		t.Fatalf("different days must not share a tiempo_key")
	}
	if inner.tiempoCalls != 2 {
		t.Fatalf("inner resolver hit %d times, want 2", inner.tiempoCalls)
	}
}
