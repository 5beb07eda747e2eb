package codec

// Literals remembers the decoded attribute values of one element so that
// typed fields can be written back with their source spelling while they
// still hold the decoded value.
type Literals map[string]Value

// Remember stores the decoded value for an attribute
func (l *Literals) Remember(name string, v Value) {
	if *l == nil {
		*l = make(Literals)
	}
	(*l)[name] = v
}

// Forget drops the stored value for an attribute
func (l Literals) Forget(name string) {
	delete(l, name)
}

// Unchanged reports whether the attribute was present in the source and
// still holds the same value
func (l Literals) Unchanged(name string, v Value) bool {
	stored, ok := l[name]
	return ok && stored.Equal(v)
}

// Present reports whether the attribute appeared in the source
func (l Literals) Present(name string) bool {
	_, ok := l[name]
	return ok
}

// Text encodes v, preferring the source literal when the value is unchanged
func (l Literals) Text(name string, v Value) string {
	if l.Unchanged(name, v) {
		return Encode(l[name])
	}
	return Encode(v)
}
