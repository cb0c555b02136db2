package config

// Default install folder layout.
const (
	DefaultManagedFolder  = "realms"
	DefaultBaseFolder     = "aotr"
	DefaultBaseGameFolder = "rotwk"
	DefaultVerifySample   = 50
)

// DefaultObsoleteFolders are map folders dropped from the package that an
// overlay copy would otherwise leave behind.
var DefaultObsoleteFolders = []string{
	"maps/map mp alternate arthedain",
	"maps/map mp alternate dorwinion",
	"maps/map mp alternate durins folk",
	"maps/map mp alternate rhun",
	"maps/map mp alternate shadow and flame",
	"maps/map mp fortress abrakhan",
	"maps/map mp fortress amon sul",
	"maps/map mp fortress barrow of cargast",
	"maps/map mp fortress caras galadhon",
	"maps/map mp fortress carn dum",
	"maps/map mp fortress dimrill gate",
	"maps/map mp fortress dol amroth",
	"maps/map mp fortress dol guldur",
	"maps/map mp fortress durthang",
	"maps/map mp fortress edennogrod",
	"maps/map mp fortress edoras",
	"maps/map mp fortress esgaroth",
	"maps/map mp fortress fornost",
	"maps/map mp fortress framsburg",
	"maps/map mp fortress gundabad",
	"maps/map mp fortress halls of the elvenking",
	"maps/map mp fortress helms deep",
	"maps/map mp fortress hidar",
	"maps/map mp fortress hornburg",
	"maps/map mp fortress ironfoots halls",
	"maps/map mp fortress isengard",
	"maps/map mp fortress kingdom of erebor",
	"maps/map mp fortress last homely house",
	"maps/map mp fortress minas morgul",
	"maps/map mp fortress minas tirith",
	"maps/map mp fortress pelargir",
	"maps/map mp fortress the angle",
	"maps/map mp fortress the dwarf hold",
	"maps/map mp fortress thorins halls",
	"maps/map mp fortress umbar",
	"maps/map mp fortress wulfborg",
}

// InstallConfig describes the layout of the game install folder.
type InstallConfig struct {
	// ManagedFolder is the package folder under the install folder.
	// Default: "realms"
	ManagedFolder string `json:"managed_folder,omitempty" koanf:"managed_folder" toml:"managed_folder,omitempty"`

	// BaseFolder is the base dependency folder under the install folder.
	// Default: "aotr"
	BaseFolder string `json:"base_folder,omitempty" koanf:"base_folder" toml:"base_folder,omitempty"`

	// BaseGameFolder holds the game executable.
	// Default: "rotwk"
	BaseGameFolder string `json:"base_game_folder,omitempty" koanf:"base_game_folder" toml:"base_game_folder,omitempty"`

	// BasePackageVersion is the version recorded after the BASE package.
	// Default: "0.8.6"
	BasePackageVersion string `json:"base_package_version,omitempty" koanf:"base_package_version" toml:"base_package_version,omitempty"`

	// ObsoleteFolders are glob patterns, relative to the managed folder, of
	// directories removed after every install or update.
	ObsoleteFolders []string `json:"obsolete_folders,omitempty" koanf:"obsolete_folders" toml:"obsolete_folders,omitempty"`

	// VerifySample bounds how many files the verified base copy size-checks.
	// Default: 50
	VerifySample *int `json:"verify_sample,omitempty" koanf:"verify_sample" toml:"verify_sample,omitempty"`
}

// GetVerifySample returns the verify sample, defaulting to DefaultVerifySample.
func (i *InstallConfig) GetVerifySample() int {
	if i == nil || i.VerifySample == nil {
		return DefaultVerifySample
	}

	return *i.VerifySample
}
