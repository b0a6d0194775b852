package world

// ControlValue is a motor channel value: either a constant or a function
// evaluated once per tick.
type ControlValue struct {
	value    float64
	computed func() float64
}

// Constant returns a fixed control value.
func Constant(v float64) ControlValue {
	return ControlValue{value: v}
}

// Computed returns a control value produced by fn each tick.
func Computed(fn func() float64) ControlValue {
	return ControlValue{computed: fn}
}

// Resolve returns the channel's value for this tick.
func (c ControlValue) Resolve() float64 {
	if c.computed != nil {
		return c.computed()
	}
	return c.value
}

// IsComputed reports whether the value comes from a function.
func (c ControlValue) IsComputed() bool {
	return c.computed != nil
}

// Controller decides an animat's control values each tick.
type Controller interface {
	Control(a *Animat)
}

// ControllerFunc adapts a function to the Controller interface.
type ControllerFunc func(a *Animat)

// Control calls f(a).
func (f ControllerFunc) Control(a *Animat) { f(a) }
