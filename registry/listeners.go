package registry

import "slices"

// OnSourceAdded registers l to observe loaded sources. Listeners run
// synchronously in registration order.
func (r *Registry) OnSourceAdded(l Listener) {
	r.listenersMu.Lock()
	defer r.listenersMu.Unlock()
	r.onAdded = append(r.onAdded, l)
}

// OnSourceRemoved registers l to observe unloaded sources.
func (r *Registry) OnSourceRemoved(l Listener) {
	r.listenersMu.Lock()
	defer r.listenersMu.Unlock()
	r.onRemoved = append(r.onRemoved, l)
}

func (r *Registry) addedListeners() []Listener {
	r.listenersMu.RLock()
	defer r.listenersMu.RUnlock()
	return slices.Clone(r.onAdded)
}

func (r *Registry) removedListeners() []Listener {
	r.listenersMu.RLock()
	defer r.listenersMu.RUnlock()
	return slices.Clone(r.onRemoved)
}

func (r *Registry) notify(listeners []Listener, e *Entry) {
	for _, l := range listeners {
		l(e)
	}
}
