package plugin

import (
	"github.com/sirupsen/logrus"
	"github.com/yourorg/swapkit-go/internal/apperr"
)

// Registry is the immutable table of plugins built at client construction
type Registry struct {
	plugins     map[Name]Plugin
	order       []Name
	defaultName Name
}

// NewRegistry invokes every factory once, in order. The default plugin is
// defaultName when set, otherwise the first registered plugin.
func NewRegistry(deps Deps, defaultName Name, factories ...Factory) (*Registry, error) {
	r := &Registry{
		plugins: make(map[Name]Plugin, len(factories)),
		order:   make([]Name, 0, len(factories)),
	}

	for i, factory := range factories {
		if factory == nil {
			return nil, apperr.Newf(apperr.KeyPluginRegistrationInvalid, "factory %d is nil", i)
		}
		name, p := factory(deps)
		if name == "" {
			return nil, apperr.Newf(apperr.KeyPluginRegistrationInvalid, "factory %d returned an empty name", i)
		}
		if p == nil {
			return nil, apperr.Newf(apperr.KeyPluginRegistrationInvalid, "plugin %q is nil", name)
		}
		if _, exists := r.plugins[name]; exists {
			return nil, apperr.Newf(apperr.KeyPluginRegistrationInvalid, "plugin %q registered twice", name)
		}
		r.plugins[name] = p
		r.order = append(r.order, name)
		logrus.Infof("Registered plugin %s", name)
	}

	if defaultName != "" {
		if _, ok := r.plugins[defaultName]; !ok {
			return nil, apperr.Newf(apperr.KeyPluginRegistrationInvalid, "default plugin %q is not registered", defaultName)
		}
		r.defaultName = defaultName
	} else if len(r.order) > 0 {
		r.defaultName = r.order[0]
	}
	return r, nil
}

// Get returns the plugin registered under name
func (r *Registry) Get(name Name) (Plugin, error) {
	p, ok := r.plugins[name]
	if !ok {
		return nil, apperr.Newf(apperr.KeyPluginNotFound, "could not find the requested plugin: %s", name)
	}
	return p, nil
}

// Resolve returns the named plugin, or the default one when name is empty
func (r *Registry) Resolve(name Name) (Name, Plugin, error) {
	if name == "" {
		name = r.defaultName
	}
	if name == "" {
		return "", nil, apperr.Newf(apperr.KeyPluginNotFound, "no plugins registered")
	}
	p, err := r.Get(name)
	if err != nil {
		return "", nil, err
	}
	return name, p, nil
}

// Default returns the name used when no provider is requested
func (r *Registry) Default() Name {
	return r.defaultName
}

// Names returns registered plugin names in registration order
func (r *Registry) Names() []Name {
	names := make([]Name, len(r.order))
	copy(names, r.order)
	return names
}
