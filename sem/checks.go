package sem

// Run-time check bits for pragma Suppress masks.  Scopes, symbols, and type
// descriptors each carry one of these masks; the emitter omits the check
// instructions for any bit set in the merged mask.
const (
	CheckRange uint32 = 1 << iota
	CheckOverflow
	CheckIndex
	CheckLength
	CheckDivision
	CheckAccess
	CheckDiscriminant
	CheckElaboration
	CheckStorage

	CheckAll = CheckRange | CheckOverflow | CheckIndex | CheckLength |
		CheckDivision | CheckAccess | CheckDiscriminant | CheckElaboration |
		CheckStorage
)

// CheckNames maps check identifiers as written in pragma Suppress to bits
var CheckNames = map[string]uint32{
	"range_check":        CheckRange,
	"overflow_check":     CheckOverflow,
	"index_check":        CheckIndex,
	"length_check":       CheckLength,
	"division_check":     CheckDivision,
	"access_check":       CheckAccess,
	"discriminant_check": CheckDiscriminant,
	"elaboration_check":  CheckElaboration,
	"storage_check":      CheckStorage,
	"all_checks":         CheckAll,
}
