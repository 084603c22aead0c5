// Package mapper converts between the wire representation (MechanicDTO)
// and the storage entity (Mechanic). The mappings are field-for-field
// copies with no I/O and no side effects.
package mapper

import "github.com/aanand-mishra/mechanics-api/internal/types"

// ToEntity maps a DTO onto a storage entity.
func ToEntity(dto types.MechanicDTO) types.Mechanic {
	return types.Mechanic{
		Code:           dto.Code,
		FirstName:      dto.FirstName,
		LastName:       dto.LastName,
		Specialization: dto.Specialization,
	}
}

// ToDTO maps a storage entity onto a DTO. A nil entity yields a nil DTO.
func ToDTO(m *types.Mechanic) *types.MechanicDTO {
	if m == nil {
		return nil
	}
	return &types.MechanicDTO{
		Code:           m.Code,
		FirstName:      m.FirstName,
		LastName:       m.LastName,
		Specialization: m.Specialization,
	}
}

// ToDTOs maps a slice of entities, preserving order. The result is never nil.
func ToDTOs(ms []types.Mechanic) []types.MechanicDTO {
	dtos := make([]types.MechanicDTO, 0, len(ms))
	for i := range ms {
		dtos = append(dtos, *ToDTO(&ms[i]))
	}
	return dtos
}
