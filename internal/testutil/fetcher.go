package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/CommonsSwarm/evmscripter/internal/dao"
)

// FakeFetcher is an in-memory dao.ArtifactFetcher that counts fetches.
type FakeFetcher struct {
	mu        sync.Mutex
	artifacts map[string]*dao.Artifact
	fetches   map[string]int
}

// NewFakeFetcher returns an empty fetcher.
func NewFakeFetcher() *FakeFetcher {
	return &FakeFetcher{
		artifacts: make(map[string]*dao.Artifact),
		fetches:   make(map[string]int),
	}
}

// Set registers the artifact served for contentURI.
func (f *FakeFetcher) Set(contentURI string, a *dao.Artifact) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.artifacts[contentURI] = a
}

// Fetch implements dao.ArtifactFetcher.
func (f *FakeFetcher) Fetch(_ context.Context, contentURI string) (*dao.Artifact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches[contentURI]++

	a, ok := f.artifacts[contentURI]
	if !ok {
		return nil, fmt.Errorf("artifact %s not found", contentURI)
	}
	return a, nil
}

// Fetches returns how many times contentURI was fetched.
func (f *FakeFetcher) Fetches(contentURI string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches[contentURI]
}

// TotalFetches returns the number of fetches across all URIs.
func (f *FakeFetcher) TotalFetches() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.fetches {
		n += c
	}
	return n
}
