// Package config holds constants shared across the Arkaan pipeline and
// its CLI front-end: source file extensions, the version string, and
// the fixed builtin-name table.
package config

// Version is the current Arkaan version.
var Version = "0.1.0"

// SourceFileExtensions are the recognized source file extensions, in
// order of preference.
var SourceFileExtensions = []string{".ark", ".arc"}

// HasSourceExt reports whether path ends with a recognized source
// extension.
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if len(path) >= len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}

// Builtin function names, one per entry of the VM's builtin table.
const (
	PrintFuncName    = "druk"
	LengthFuncName   = "lengte"
	HeadFuncName     = "kop"
	TailFuncName     = "stert"
	EmptyFuncName    = "leeg"
	PrependFuncName  = "voeg_by"
	AppendFuncName   = "heg_aan"
	ConcatFuncName   = "ketting"
	ReverseFuncName  = "omgekeer"
	MapFuncName      = "kaart"
	FilterFuncName   = "filter"
	FoldFuncName     = "vou"
	ForEachFuncName  = "vir_elk"
	NewIDFuncName    = "id_nuut"
	YAMLEncodeName   = "yaml_enkodeer"
	YAMLDecodeName   = "yaml_dekodeer"
)

// BuiltinNames lists every builtin in declaration order. The compiler
// seeds its global names from the VM's builtin table, not from this list.
var BuiltinNames = []string{
	PrintFuncName, LengthFuncName, HeadFuncName, TailFuncName, EmptyFuncName,
	PrependFuncName, AppendFuncName, ConcatFuncName, ReverseFuncName,
	MapFuncName, FilterFuncName, FoldFuncName, ForEachFuncName,
	NewIDFuncName, YAMLEncodeName, YAMLDecodeName,
}

// Keywords lists every reserved word the lexer recognizes.
var Keywords = []string{
	"laat", "stel", "funksie", "fn", "gee", "as", "anders", "terwyl",
	"tipe", "pas", "geval", "druk", "waar", "onwaar", "niks",
}
