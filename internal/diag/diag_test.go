package diag

import (
	"errors"
	"fmt"
	"testing"
)

func assert(t *testing.T, cond bool, format string, args ...any) {
	if !cond {
		t.Fatalf(fmt.Sprintf("%v %s", cond, format), args...)
	}
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		Unsupported:  "unsupported IL construct",
		OutOfDialect: "out-of-dialect source",
		Unresolved:   "unresolved symbol",
		BranchRange:  "branch out of range",
		Malformed:    "malformed input",
		Capacity:     "capacity overflow",
	}
	for kind, want := range cases {
		assert(t, kind.String() == want, "Kind(%d).String() = %q, want %q", int(kind), kind.String(), want)
	}
}

func TestNewAndError(t *testing.T) {
	err := New(Unresolved, `call to "foo"`)
	var de *Error
	assert(t, errors.As(err, &de), "New did not produce an *Error")
	assert(t, de.Kind == Unresolved, "Kind = %v, want Unresolved", de.Kind)
	assert(t, err.Error() == `unresolved symbol: call to "foo"`, "Error() = %q", err.Error())
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(Malformed, "image section", cause)
	assert(t, errors.Is(err, cause), "Wrap did not preserve the cause for errors.Is")
	assert(t, errors.Unwrap(err) == cause, "Unwrap() did not return the original cause")
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		err  error
		kind Kind
	}{
		{Unsupportedf("opcode %d", 7), Unsupported},
		{OutOfDialectf("divisor %d", 3), OutOfDialect},
		{Unresolvedf("label %q", "main"), Unresolved},
		{BranchRangef("offset %d", 200), BranchRange},
		{Malformedf("bad header"), Malformed},
		{Capacityf("local count %d", 300), Capacity},
	}
	for _, tc := range tests {
		var de *Error
		assert(t, errors.As(tc.err, &de), "%v did not produce an *Error", tc.err)
		assert(t, de.Kind == tc.kind, "got Kind %v, want %v", de.Kind, tc.kind)
	}
}
