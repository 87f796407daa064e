package services

// Registry holds the known services in fixed priority order. Detection tries
// each service in order and the first match wins.
type Registry struct {
	services []Service
}

// NewRegistry creates a registry with all supported services.
func NewRegistry() *Registry {
	return &Registry{
		services: []Service{
			NewSpotifyService(),
			NewYouTubeMusicService(),
		},
	}
}

// Detect returns the first service claiming the link, or false if none does.
func (r *Registry) Detect(rawURL string) (Service, bool) {
	for _, svc := range r.services {
		if svc.Detect(rawURL) {
			return svc, true
		}
	}
	return nil, false
}

// Get returns the registered service with the given name.
func (r *Registry) Get(name Name) (Service, bool) {
	for _, svc := range r.services {
		if svc.Name() == name {
			return svc, true
		}
	}
	return nil, false
}

// TargetFor returns the conversion target for the given source: the next
// other registered service in registry order. With exactly two registered
// services this is the binary complement.
func (r *Registry) TargetFor(source Name) (Service, bool) {
	idx := -1
	for i, svc := range r.services {
		if svc.Name() == source {
			idx = i
			break
		}
	}
	if idx < 0 || len(r.services) < 2 {
		return nil, false
	}
	return r.services[(idx+1)%len(r.services)], true
}

// Names returns the names of all registered services in priority order.
func (r *Registry) Names() []Name {
	names := make([]Name, 0, len(r.services))
	for _, svc := range r.services {
		names = append(names, svc.Name())
	}
	return names
}
