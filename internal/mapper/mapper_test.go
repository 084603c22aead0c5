package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aanand-mishra/mechanics-api/internal/types"
)

func TestToEntityAndBack(t *testing.T) {
	dto := types.MechanicDTO{Code: "M100", FirstName: "Jane", LastName: "Doe", Specialization: "Brakes"}

	m := ToEntity(dto)
	assert.Equal(t, types.Mechanic{Code: "M100", FirstName: "Jane", LastName: "Doe", Specialization: "Brakes"}, m)
	assert.Equal(t, &dto, ToDTO(&m))
}

func TestToDTONil(t *testing.T) {
	assert.Nil(t, ToDTO(nil))
}

func TestToDTOs(t *testing.T) {
	assert.NotNil(t, ToDTOs(nil))
	assert.Empty(t, ToDTOs(nil))

	got := ToDTOs([]types.Mechanic{
		{Code: "B"},
		{Code: "A"},
	})
	assert.Equal(t, []types.MechanicDTO{{Code: "B"}, {Code: "A"}}, got)
}
