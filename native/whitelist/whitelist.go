// Package whitelist implements the governance-controlled allowlist of claim
// source URLs that submission intake gates on.
package whitelist

import (
	"errors"

	"gigchain/core/events"
)

var (
	ErrUrlTooLong            = errors.New("whitelist: url exceeds MaxUrlLength")
	ErrUrlAlreadyWhitelisted = errors.New("whitelist: url already whitelisted")
	ErrUrlNotWhitelisted     = errors.New("whitelist: url not whitelisted")
)

type registryState interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
	KVDelete(key []byte) error
}

func urlKey(url []byte) []byte {
	buf := make([]byte, 0, len("whitelist/url/")+len(url))
	buf = append(buf, "whitelist/url/"...)
	buf = append(buf, url...)
	return buf
}

// Registry persists the set of whitelisted claim source URLs.
type Registry struct {
	state     registryState
	emitter   events.Emitter
	maxUrlLen int
}

// NewRegistry constructs a whitelist registry backed by the provided state
// accessor, bounding URLs to maxUrlLen bytes.
func NewRegistry(state registryState, maxUrlLen int) *Registry {
	return &Registry{state: state, emitter: events.NoopEmitter{}, maxUrlLen: maxUrlLen}
}

// SetEmitter configures the event emitter used by the registry. Passing nil
// resets the emitter to a no-op implementation.
func (r *Registry) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		r.emitter = events.NoopEmitter{}
		return
	}
	r.emitter = emitter
}

func (r *Registry) emit(event events.Event) {
	if r == nil || r.emitter == nil {
		return
	}
	r.emitter.Emit(event)
}

func (r *Registry) checkLength(url []byte) error {
	if r.maxUrlLen > 0 && len(url) > r.maxUrlLen {
		return ErrUrlTooLong
	}
	return nil
}

// Add whitelists url. The caller is responsible for enforcing that the
// origin carries root authority; this package only models the ledger.
func (r *Registry) Add(url []byte) error {
	if err := r.checkLength(url); err != nil {
		return err
	}
	present, err := r.IsWhitelisted(url)
	if err != nil {
		return err
	}
	if present {
		return ErrUrlAlreadyWhitelisted
	}
	if err := r.state.KVPut(urlKey(url), struct{}{}); err != nil {
		return err
	}
	r.emit(events.UrlAdded{URL: append([]byte(nil), url...)})
	return nil
}

// Remove un-whitelists url.
func (r *Registry) Remove(url []byte) error {
	if err := r.checkLength(url); err != nil {
		return err
	}
	present, err := r.IsWhitelisted(url)
	if err != nil {
		return err
	}
	if !present {
		return ErrUrlNotWhitelisted
	}
	if err := r.state.KVDelete(urlKey(url)); err != nil {
		return err
	}
	r.emit(events.UrlRemoved{URL: append([]byte(nil), url...)})
	return nil
}

// IsWhitelisted reports whether url is currently whitelisted.
func (r *Registry) IsWhitelisted(url []byte) (bool, error) {
	if err := r.checkLength(url); err != nil {
		return false, err
	}
	ok, err := r.state.KVGet(urlKey(url), nil)
	if err != nil {
		return false, err
	}
	return ok, nil
}
