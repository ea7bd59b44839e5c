package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical(t *testing.T) {
	tests := []struct {
		name string
		in   IRValue
		want string
	}{
		{"null", IRNull{}, `null`},
		{"int", IRInt(-42), `-42`},
		{"bool", IRBool(false), `false`},
		{"no html escaping", IRString("<a&b>"), `"<a&b>"`},
		{"nfc normalized", IRString("e\u0301"), "\"\u00e9\""},
		{"control chars escaped", IRString("a\nb"), `"a\nb"`},
		{"line separator literal", IRString("a\u2028b"), "\"a\u2028b\""},
		{"escaped backslash kept", IRString(`\u2028`), `"\\u2028"`},
		{"sorted object", IRObject{"b": IRInt(1), "a": IRArray{IRBool(true)}}, `{"a":[true],"b":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalCanonical(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestMarshalCanonical_Deterministic(t *testing.T) {
	obj := IRObject{"z": IRInt(1), "m": IRString("x"), "a": IRObject{"k": IRNull{}}}
	first, err := MarshalCanonical(obj)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := MarshalCanonical(obj)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
