package eval

// An Arena holds environment frames.
// Frames are addressed by index and live as long as the Arena.
type Arena struct {
	frames []frame
}

type frame struct {
	// parent is the index of the enclosing frame, or -1 for a root.
	parent int
	vars   map[string]Value
}

// An Env is a handle to a frame of an Arena.
// The zero Env is invalid.
type Env struct {
	a *Arena
	i int
}

// NewRoot returns a new root frame with no parent.
func (a *Arena) NewRoot() Env {
	a.frames = append(a.frames, frame{parent: -1})
	return Env{a: a, i: len(a.frames) - 1}
}

// Len returns the number of frames in the Arena.
func (a *Arena) Len() int { return len(a.frames) }

// Child returns a new frame whose parent is e.
func (e Env) Child() Env {
	e.a.frames = append(e.a.frames, frame{parent: e.i})
	return Env{a: e.a, i: len(e.a.frames) - 1}
}

// Define binds a name in this frame,
// replacing any existing binding in this frame.
func (e Env) Define(name string, v Value) {
	f := &e.a.frames[e.i]
	if f.vars == nil {
		f.vars = make(map[string]Value)
	}
	f.vars[name] = v
}

// Set rebinds the nearest existing binding of a name.
// It is a CannotSetUndefined error if the name is not bound.
func (e Env) Set(name string, v Value) error {
	for i := e.i; i >= 0; i = e.a.frames[i].parent {
		if _, ok := e.a.frames[i].vars[name]; ok {
			e.a.frames[i].vars[name] = v
			return nil
		}
	}
	return errorf(CannotSetUndefined, "cannot set undefined variable %s", name)
}

// Lookup returns the value of the nearest binding of a name.
func (e Env) Lookup(name string) (Value, bool) {
	for i := e.i; i >= 0; i = e.a.frames[i].parent {
		if v, ok := e.a.frames[i].vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Parent returns the enclosing frame, if any.
func (e Env) Parent() (Env, bool) {
	p := e.a.frames[e.i].parent
	if p < 0 {
		return Env{}, false
	}
	return Env{a: e.a, i: p}, true
}
