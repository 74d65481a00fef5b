package rules

import "github.com/joseph-ayodele/vet-records/internal/entity"

// Locales in evaluation order.
const (
	LocaleEN       = "en"
	LocaleES       = "es"
	LocaleFR       = "fr"
	LocalePT       = "pt"
	LocaleIT       = "it"
	LocaleFallback = "fallback"
)

var localeOrder = []string{LocaleEN, LocaleES, LocaleFR, LocalePT, LocaleIT}

// fieldLabels lists label fragments per field and locale. Fragments are regular
// expressions; a space matches any run of blanks. More specific labels come first
// within a locale.
var fieldLabels = map[string]map[string][]string{
	entity.FieldPetName: {
		LocaleEN: {`Animal Name`, `Patient Name`, `Pet Name`, `Patient`, `Pet`},
		LocaleES: {`Nombre del animal`, `Nombre de la mascota`, `Nombre`, `Mascota`, `Paciente`},
		LocaleFR: {`Nom de l['’]animal`, `Nom du patient`, `Nom`},
		LocalePT: {`Nome do animal`, `Nome do paciente`, `Nome`},
		LocaleIT: {`Nome dell['’]animale`, `Nome del paziente`, `Paziente`},
	},
	entity.FieldSpecies: {
		LocaleEN: {`Sp[e3]cies`, `Animal Type`},
		LocaleES: {`Especie`, `Tipo de animal`},
		LocaleFR: {`Esp[èe]ce`},
		LocalePT: {`Esp[ée]cie`},
		LocaleIT: {`Specie`},
	},
	entity.FieldBreed: {
		LocaleEN: {`Br[eo]{2}d`},
		LocaleES: {`Raza`},
		LocaleFR: {`Race`},
		LocalePT: {`Ra[çc]a`},
		LocaleIT: {`Razza`},
	},
	entity.FieldAge: {
		LocaleEN: {`Age`},
		LocaleES: {`Edad`},
		LocaleFR: {`[ÂA]ge`},
		LocalePT: {`Idade`},
		LocaleIT: {`Et[àa]`},
	},
	entity.FieldOwnerName: {
		LocaleEN: {`Own[e3]r(?:['’]s)? Name`, `Own[e3]r`, `Client Name`, `Client`, `Guardian`},
		LocaleES: {`Propietario`, `Dueño`, `Cliente`, `Tutor`},
		LocaleFR: {`Propri[ée]taire`},
		LocalePT: {`Propriet[áa]rio`, `Dono`, `Tutor`},
		LocaleIT: {`Proprietario`},
	},
	entity.FieldDiagnosis: {
		LocaleEN: {`Diagnosis`, `Diagnostic`, `Assessment`},
		LocaleES: {`Diagn[óo]stico`, `Evaluaci[óo]n`},
		LocaleFR: {`Diagnostic`, `[ÉE]valuation`},
		LocalePT: {`Diagn[óo]stico`, `Avalia[çc][ãa]o`},
		LocaleIT: {`Diagnosi`, `Valutazione`},
	},
	entity.FieldTreatment: {
		LocaleEN: {`Treatment`, `Therapy`, `Medication`, `Plan`},
		LocaleES: {`Tratamiento`, `Medicaci[óo]n`, `Terapia`},
		LocaleFR: {`Traitement`, `Th[ée]rapie`},
		LocalePT: {`Tratamento`, `Medica[çc][ãa]o`},
		LocaleIT: {`Trattamento`, `Terapia`},
	},
	entity.FieldVeterinarian: {
		LocaleEN: {`Attending Veterinarian`, `Veterinarian`, `Doctor`, `Vet`},
		LocaleES: {`M[ée]dico veterinario`, `Veterinari[oa]`},
		LocaleFR: {`V[ée]t[ée]rinaire`},
		LocalePT: {`M[ée]dico veterin[áa]rio`, `Veterin[áa]ri[oa]`},
		LocaleIT: {`Medico veterinario`, `Veterinari[oa]`},
	},
	entity.FieldDate: {
		LocaleEN: {`Date of Visit`, `Visit Date`, `Date`},
		LocaleES: {`Fecha de (?:consulta|visita)`, `Fecha`},
		LocaleFR: {`Date de (?:visite|consultation)`, `Date`},
		LocalePT: {`Data da consulta`, `Data`},
		LocaleIT: {`Data della visita`, `Data`},
	},
}

const nameChars = `A-Za-z\x{00C0}-\x{00D6}\x{00D8}-\x{00F6}\x{00F8}-\x{00FF}`

// fallbacks are label-free patterns tried after every locale. Group 1 holds the
// value when present, otherwise the whole match is used.
var fallbacks = map[string][]string{
	entity.FieldPetName: {
		// Line-anchored so "Owner's Name:" is not read as the pet's name.
		`(?im)^[ \t]*['"\x60\x{2018}\x{2019}]?[ \t]*Name[:\-.]?[ \t]*([` + nameChars + `'\- ]{2,40})`,
	},
	entity.FieldSpecies: {
		`(?i)\b(Dog|Cat|Perro|Gato|Chien|Chat|Cane|Gatto|Cão|Rabbit|Conejo|Lapin|Coelho|Coniglio)\b`,
	},
	entity.FieldBreed: {
		`(?i)\b((?:Golden |Labrador )?Retriever|Labrador|Siamese|Poodle|Bulldog|Beagle|Mixed|Cruce|Mestizo)\b`,
	},
	entity.FieldAge: {
		`(?i)\b(\d{1,2}[ \t]*(?:years?|yrs?|años?|anos?|ans|anni|meses|mois|mesi|months?|mo))\b`,
		`(?i)\b(\d)[ \t]?y\b`,
	},
	entity.FieldOwnerName: {
		`(?i)\b(?:Owner|Propietario|Cliente|Guardian|Dueño|Tutor)[:\-.]?[ \t]*([` + nameChars + `'\-. ]{3,60})`,
	},
	entity.FieldVeterinarian: {
		`(?i)\b((?:Dr|Dra|Doctor|Dottore|Doutor)\b\.?[ \t]*[` + nameChars + `'\- ]{3,40})`,
	},
	entity.FieldDate: {
		`\b(\d{1,2}[\-/]\d{1,2}[\-/]\d{2,4})\b`,
		`\b(\d{4}[\-/]\d{1,2}[\-/]\d{1,2})\b`,
	},
}
