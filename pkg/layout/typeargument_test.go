package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeArgumentRoundTrip(t *testing.T) {
	arg := TypeArgument{
		Type: FromCode(CodeTypedMapScope),
		Args: NewTypeArgumentList(
			TypeArgument{Type: FromCode(CodeUtf8), Args: Empty},
			TypeArgument{Type: FromCode(CodeInt32), Args: Empty},
		),
	}

	buf := make([]byte, 32)
	n := arg.Type.WriteTypeArgument(buf, 0, arg.Args)
	assert.Equal(t, arg.Type.CountTypeArgument(arg.Args), n)

	got, m := ReadTypeArgument(buf, 0)
	require.Equal(t, n, m)
	assert.True(t, arg.Equal(got))
}

func TestSchemaArgumentRoundTrip(t *testing.T) {
	arg := TypeArgument{Type: FromCode(CodeSchema), Args: NewSchemaArgumentList(SchemaId(-42))}

	buf := make([]byte, 16)
	n := arg.Type.WriteTypeArgument(buf, 0, arg.Args)

	got, m := ReadTypeArgument(buf, 0)
	require.Equal(t, n, m)
	assert.Equal(t, SchemaId(-42), got.Args.SchemaId())
}

func TestVariableArityTupleRoundTrip(t *testing.T) {
	arg := TypeArgument{
		Type: FromCode(CodeTupleScope),
		Args: NewTypeArgumentList(
			TypeArgument{Type: FromCode(CodeInt8), Args: Empty},
			TypeArgument{Type: FromCode(CodeInt16), Args: Empty},
			TypeArgument{Type: FromCode(CodeInt32), Args: Empty},
		),
	}

	buf := make([]byte, 32)
	arg.Type.WriteTypeArgument(buf, 0, arg.Args)

	got, _ := ReadTypeArgument(buf, 0)
	require.Equal(t, 3, got.Args.Count())
	assert.True(t, arg.Equal(got))
}
