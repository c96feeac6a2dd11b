package exposure

// Vocabulary is the set of category labels a medium offers for each
// categorical field.  Labels match reference-table column names by exact
// string comparison; near-duplicate entries are kept because the reference
// tables carry the same inconsistencies.  Species and Tissues start with the
// empty "no selection" choice.
type Vocabulary struct {
	Compounds []string `json:"compounds"`
	Species   []string `json:"species"`
	Tissues   []string `json:"tissues"`
}

// HasCompound reports whether label is one of the medium's compounds.
func (v Vocabulary) HasCompound(label string) bool { return contains(v.Compounds, label) }

// HasSpecies reports whether label is one of the medium's species.
func (v Vocabulary) HasSpecies(label string) bool { return contains(v.Species, label) }

// HasTissue reports whether label is one of the medium's tissues.
func (v Vocabulary) HasTissue(label string) bool { return contains(v.Tissues, label) }

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

// VocabularyFor returns the compiled-in vocabulary of medium.  The returned
// slices are copies and may be modified by the caller.  An unsupported medium
// yields the zero Vocabulary.
func VocabularyFor(medium Medium) Vocabulary {
	switch medium {
	case MediumAquatic:
		return Vocabulary{
			Compounds: clone(aquaticCompounds),
			Species:   clone(aquaticSpecies),
			Tissues:   clone(aquaticTissues),
		}
	case MediumSoil:
		return Vocabulary{
			Compounds: clone(soilCompounds),
			Species:   clone(soilSpecies),
			Tissues:   clone(soilTissues),
		}
	default:
		return Vocabulary{}
	}
}

func clone(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}

var aquaticCompounds = []string{
	"Compounds_Acetochlor",
	"Compounds_Azoxystrobin",
	"Compounds_24-epibrassinolide",
	"Compounds_Bromuconazole",
	"Compounds_Captan",
	"Compounds_Carbendazim",
	"Compounds_Chlorpyrifos",
	"Compounds_Difenoconazole",
	"Compounds_Econazole",
	"Compounds_Epoxiconazole",
	"Compounds_Fludioxonil",
	"Compounds_Fluopyram",
	"Compounds_Fluoxastrobin",
	"Compounds_Fluxapyroxad",
	"Compounds_Imidacloprid",
	"Compounds_Isopyrazam",
	"Compounds_Mancozeb",
	"Compounds_Metiram",
	"Compounds_Myclobutanil",
	"Compounds_Oxathiapiprolin",
	"Compounds_Propiconazole",
	"Compounds_Prothioconazole",
	"Compounds_Pyraclostrobin",
	"Compounds_R-(-)-penthiopyrad",
	"Compounds_R-metalaxyl",
	"Compounds_R-prothioconazole",
	"Compounds_R-prothioconazole-desthio",
	"Compounds_Rac-penthiopyrad",
	"Compounds_Rac-prothioconazole",
	"Compounds_Rac-prothioconazole-desthio",
	"Compounds_S-(+)-penthiopyrad",
	"Compounds_S-prothioconazole",
	"Compounds_S-prothioconazole-desthio",
	"Compounds_Salicylic acid",
	"Compounds_Salicylic acid with Thiram",
	"Compounds_Tebuconazole",
	"Compounds_Thifluzamide",
	"Compounds_Thiophanate-methyl",
	"Compounds_Thiram",
	"Compounds_Triadimefon",
	"Compounds_Trifloxystrobin",
	"Compounds_Triflumizole",
	"Compounds_Trimethyltin chloride",
}

var soilCompounds = []string{
	"Compounds_Azoxystrobin",
	"Compounds_Benzovindiflupyr",
	"Compounds_Carbendazim",
	"Compounds_Epoxiconazole",
	"Compounds_Flumorph",
	"Compounds_Fluopicolide",
	"Compounds_Fluoxastrobin",
	"Compounds_Hexaconazole",
	"Compounds_Hymexazol",
	"Compounds_Kitazin",
	"Compounds_Maneb",
	"Compounds_Mefentrifluconazole",
	"Compounds_Mefentrifluconazole ",
	"Compounds_Metalaxyl-M",
	"Compounds_Pentachloronitrobenzene",
	"Compounds_Pyraclostrobin",
	"Compounds_R-(-)-ptz",
	"Compounds_S-(+)-ptz",
	"Compounds_Tebuconazole",
	"Compounds_Thifluzamide",
	"Compounds_Thiram",
	"Compounds_Tolclofos-methyl",
	"Compounds_Triadimenol",
	"Compounds_Trifloxystrobin",
	"Compounds_Trifloxystrobin acid",
	"Compounds_Vinclozolin",
}

var aquaticSpecies = []string{
	"",
	"Species_Zebrafish",
	"Species_Anabaena laxa",
	"Species_Caenorhabditis elegans",
	"Species_Carp",
	"Species_Cell",
	"Species_Chlorella vulgaris",
	"Species_Donax faba",
	"Species_Gobiocypris rarus",
	"Species_Grape (Vitis vinifera L.)",
	"Species_Grass Carp",
	"Species_Larimichthys crocea",
	"Species_Lemna minor",
	"Species_Mouse Sertoli",
	"Species_Mouse sertoli",
	"Species_Nostoc muscorum",
	"Species_Oreochromis niloticus",
	"Species_Rainbow trout",
	"Species_Rare minnow",
	"Species_Scenedesmus obliquus",
	"Species_Tetrahymena thermophila",
	"Species_Tomato (Solanum lycopersicum Mill)",
	"Species_Triticum aestivum",
}

var soilSpecies = []string{
	"",
	"Species_Adult male rats",
	"Species_Adult rats",
	"Species_Albino rats",
	"Species_Black soil Eisenia foetida",
	"Species_Broilers",
	"Species_Earthworms",
	"Species_Eisenia fetida",
	"Species_Eisenis fetida",
	"Species_Eremias argus",
	"Species_Fluvo-aquic soil Eisenia foetida",
	"Species_Male Wistar rats",
	"Species_Male albino Wistar rats",
	"Species_Male mice",
	"Species_Male sprague",
	"Species_Pisum sativum",
	"Species_R-(-)Eisenia fetida",
	"Species_Rac Eisenia fetida",
	"Species_Red clay Eisenia foetida",
	"Species_S-(+)Eisenia fetida",
	"Species_Wistar rats",
}

var aquaticTissues = []string{
	"",
	"Tissues_Anabaena laxa",
	"Tissues_Body tissue",
	"Tissues_Brain",
	"Tissues_Carp",
	"Tissues_Chlorella vulgaris",
	"Tissues_Embryo",
	"Tissues_F98",
	"Tissues_Foot tissue",
	"Tissues_Gill",
	"Tissues_Gill tissue",
	"Tissues_H9c2 cardiomyoblasts",
	"Tissues_HCT116",
	"Tissues_Hepatopancreas",
	"Tissues_Homogenate",
	"Tissues_Human erythrocytes",
	"Tissues_Larvae",
	"Tissues_Larval",
	"Tissues_Larval liver",
	"Tissues_Leaf",
	"Tissues_Lemna minor",
	"Tissues_Liver",
	"Tissues_Liver cells",
	"Tissues_Nostoc muscorum",
	"Tissues_Raw264.7 cells",
	"Tissues_Root",
	"Tissues_Scenedesmus obliquus",
	"Tissues_Spleen",
	"Tissues_TM4 cells",
}

var soilTissues = []string{
	"",
	"Tissues_Bone",
	"Tissues_Brain",
	"Tissues_Erythrocyte",
	"Tissues_Heart tissue",
	"Tissues_Heart tissues",
	"Tissues_Kidney",
	"Tissues_Laval",
	"Tissues_Liver",
	"Tissues_Myocardial tissues",
	"Tissues_Shoots",
	"Tissues_Testis",
}

//Personal.AI order the ending
