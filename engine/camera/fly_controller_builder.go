package camera

import "github.com/Carmen-Shannon/ruckus/common"

// FlyControllerOption is a functional option for configuring a FlyController.
type FlyControllerOption func(*flyControllerImpl)

// WithBinding maps key to a movement direction, replacing any existing binding for that key.
//
// Parameters:
//   - key: the key code
//   - m: the movement applied while key is held
//
// Returns:
//   - FlyControllerOption: functional option to add the binding
func WithBinding(key common.Key, m Movement) FlyControllerOption {
	return func(fc *flyControllerImpl) {
		fc.bindings[key] = m
	}
}

// WithBindings replaces the whole key map.
func WithBindings(bindings map[common.Key]Movement) FlyControllerOption {
	return func(fc *flyControllerImpl) {
		fc.bindings = make(map[common.Key]Movement, len(bindings))
		for k, m := range bindings {
			fc.bindings[k] = m
		}
	}
}

// WithEnabled sets whether the controller starts enabled.
func WithEnabled(enabled bool) FlyControllerOption {
	return func(fc *flyControllerImpl) {
		fc.enabled = enabled
	}
}
