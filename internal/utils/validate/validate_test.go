package validate

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/mechanics-api/internal/types"
)

func TestStruct(t *testing.T) {
	valid := types.MechanicDTO{FirstName: "Jane", LastName: "Doe", Specialization: "Brakes"}
	assert.NoError(t, Struct(valid))

	blank := valid
	blank.FirstName = "   "
	blank.Specialization = ""

	err := Struct(blank)
	require.Error(t, err)

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 2)

	assert.Equal(t, "firstName", verrs[0].Field())
	assert.Equal(t, "notblank", verrs[0].Tag())
	assert.Equal(t, "specialization", verrs[1].Field())
	assert.Equal(t, "required", verrs[1].Tag())
}

func TestStructIgnoresCode(t *testing.T) {
	// Code is the service's concern, not a field-shape rule.
	assert.NoError(t, Struct(types.MechanicDTO{FirstName: "a", LastName: "b", Specialization: "c"}))
}
