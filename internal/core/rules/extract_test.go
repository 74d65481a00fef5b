package rules

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/vet-records/internal/core/textnorm"
	"github.com/joseph-ayodele/vet-records/internal/entity"
)

const englishRecord = `Veterinary Medical Record

Patient Name: Max
Species: Dog
Breed: Golden Retriever
Age: 5 years old
Owner: John Smith
Date: 2025-11-15
Veterinarian: Dr. Jane Wilson

Diagnosis:
Acute gastroenteritis with mild dehydration.
Possible dietary indiscretion.

Treatment:
- Fluid therapy (subcutaneous)
- Metoclopramide 0.5mg/kg BID for 3 days
- Bland diet for 5 days
- Recheck in 3 days if symptoms persist
`

func TestExtractEnglish(t *testing.T) {
	got := Extract(englishRecord)

	assert.Equal(t, "Max", got[entity.FieldPetName])
	assert.Equal(t, "Dog", got[entity.FieldSpecies])
	assert.Equal(t, "Golden Retriever", got[entity.FieldBreed])
	assert.Equal(t, "5 years old", got[entity.FieldAge])
	assert.Equal(t, "John Smith", got[entity.FieldOwnerName])
	assert.Equal(t, "Dr. Jane Wilson", got[entity.FieldVeterinarian])
	assert.Equal(t, "2025-11-15", got[entity.FieldDate])
	assert.Equal(t, "Acute gastroenteritis with mild dehydration.\nPossible dietary indiscretion.", got[entity.FieldDiagnosis])
	assert.Contains(t, got[entity.FieldTreatment], "Fluid therapy")
	assert.Contains(t, got[entity.FieldTreatment], "Recheck in 3 days")
	assert.Len(t, got, 9)
}

func TestExtractCompactEnglish(t *testing.T) {
	raw := "Patient Name: Max\nSpecies: Dog\nBreed: Golden Retriever\nAge: 5 years old\nOwner: John Smith\n" +
		"Veterinarian: Dr. Jane Wilson\nDate: 2025-11-15\nDiagnosis:\nAcute gastroenteritis.\nTreatment:\nFluid therapy."

	got := Extract(raw)

	require.Len(t, got, 9)
	assert.Equal(t, "Max", got[entity.FieldPetName])
	assert.Equal(t, "Dog", got[entity.FieldSpecies])
	assert.Equal(t, "Golden Retriever", got[entity.FieldBreed])
	assert.Equal(t, "5 years old", got[entity.FieldAge])
	assert.Equal(t, "John Smith", got[entity.FieldOwnerName])
	assert.Equal(t, "Dr. Jane Wilson", got[entity.FieldVeterinarian])
	assert.Equal(t, "2025-11-15", got[entity.FieldDate])
	assert.Equal(t, "Acute gastroenteritis.", got[entity.FieldDiagnosis])
	assert.Equal(t, "Fluid therapy.", got[entity.FieldTreatment])
}

func TestExtractSpanish(t *testing.T) {
	raw := "Nombre: Firulais\nRaza: Pastor Alemán\nEdad: 3 años\nPropietario: María García\n\n" +
		"Diagnóstico: Otitis externa\nTratamiento: Limpieza auricular y antibiótico tópico"

	got := Extract(raw)

	assert.Equal(t, "Firulais", got[entity.FieldPetName])
	assert.Equal(t, "Pastor Alemán", got[entity.FieldBreed])
	assert.Equal(t, "3 años", got[entity.FieldAge])
	assert.Equal(t, "María García", got[entity.FieldOwnerName])
	assert.Equal(t, "Otitis externa", got[entity.FieldDiagnosis])
	assert.Equal(t, "Limpieza auricular y antibiótico tópico", got[entity.FieldTreatment])
	assert.NotContains(t, got, entity.FieldSpecies)
	assert.NotContains(t, got, entity.FieldDate)
}

func TestExtractOtherLocales(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want entity.Fields
	}{
		{
			name: "french",
			raw: "Nom de l'animal: Minou\nEspèce: Chat\nRace: Européen\nÂge: 4 ans\nPropriétaire: Jean Dupont\n" +
				"Vétérinaire: Dr. Claire Martin\nDate: 12/03/2024\nDiagnostic: Otite\nTraitement: Gouttes auriculaires",
			want: entity.Fields{
				entity.FieldPetName:      "Minou",
				entity.FieldSpecies:      "Chat",
				entity.FieldBreed:        "Européen",
				entity.FieldAge:          "4 ans",
				entity.FieldOwnerName:    "Jean Dupont",
				entity.FieldVeterinarian: "Dr. Claire Martin",
				entity.FieldDate:         "12/03/2024",
				entity.FieldDiagnosis:    "Otite",
				entity.FieldTreatment:    "Gouttes auriculaires",
			},
		},
		{
			name: "portuguese",
			raw: "Nome do animal: Rex\nEspécie: Cão\nRaça: Vira-lata\nIdade: 2 anos\nTutor: Ana Souza\n" +
				"Diagnóstico: Dermatite alérgica\nTratamento: Shampoo medicamentoso\nData: 05/06/2024",
			want: entity.Fields{
				entity.FieldPetName:   "Rex",
				entity.FieldSpecies:   "Cão",
				entity.FieldBreed:     "Vira-lata",
				entity.FieldAge:       "2 anos",
				entity.FieldOwnerName: "Ana Souza",
				entity.FieldDiagnosis: "Dermatite alérgica",
				entity.FieldTreatment: "Shampoo medicamentoso",
				entity.FieldDate:      "05/06/2024",
			},
		},
		{
			name: "italian",
			raw: "Nome dell'animale: Fido\nSpecie: Cane\nRazza: Meticcio\nEtà: 7 anni\nProprietario: Marco Rossi\n" +
				"Diagnosi: Artrite\nTrattamento: Antinfiammatori\nData: 2024-02-10",
			want: entity.Fields{
				entity.FieldPetName:   "Fido",
				entity.FieldSpecies:   "Cane",
				entity.FieldBreed:     "Meticcio",
				entity.FieldAge:       "7 anni",
				entity.FieldOwnerName: "Marco Rossi",
				entity.FieldDiagnosis: "Artrite",
				entity.FieldTreatment: "Antinfiammatori",
				entity.FieldDate:      "2024-02-10",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.raw))
		})
	}
}

func TestExtractPartial(t *testing.T) {
	got := Extract("Pet: Luna\nSpecies: Cat\n\nDiagnosis: Upper respiratory infection\n")

	assert.Equal(t, entity.Fields{
		entity.FieldPetName:   "Luna",
		entity.FieldSpecies:   "Cat",
		entity.FieldDiagnosis: "Upper respiratory infection",
	}, got)
}

func TestExtractEmpty(t *testing.T) {
	for _, raw := range []string{"", "   ", "\n\t\r\n", " ​"} {
		got := Extract(raw)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	}
}

func TestExtractFreeText(t *testing.T) {
	got := Extract("This is a random text with a Dog mentioned but no clear structure.")

	assert.Equal(t, entity.Fields{entity.FieldSpecies: "Dog"}, got)
}

func TestExtractOCRCorrupted(t *testing.T) {
	got := Extract("'Animal Name Bella\nSpecies og\nBrood Labrador Retriever\n'Age/D08 S years / 03-14-2084\n")

	assert.Equal(t, "Bella", got[entity.FieldPetName])
	assert.Contains(t, got[entity.FieldBreed], "Labrador Retriever")
	assert.NotContains(t, got, entity.FieldSpecies)
}

func TestExtractLabels(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		field string
		want  string
	}{
		{"missing colon", "Patient Name Max\nSpecies Dog", entity.FieldPetName, "Max"},
		{"missing colon species", "Patient Name Max\nSpecies Dog", entity.FieldSpecies, "Dog"},
		{"dash separator", "Owner - John Smith", entity.FieldOwnerName, "John Smith"},
		{"dot separator", "Breed. Beagle", entity.FieldBreed, "Beagle"},
		{"stray apostrophe before owner", "'Owner's Name: Jane Doe", entity.FieldOwnerName, "Jane Doe"},
		{"curly quote before label", "‘Species: Cat", entity.FieldSpecies, "Cat"},
		{"ocr digit in label", "Own3r: Jane Doe", entity.FieldOwnerName, "Jane Doe"},
		{"ocr breed spelling", "Breod: Poodle", entity.FieldBreed, "Poodle"},
		{"crlf input", "Patient Name: Max\r\nSpecies: Dog\r\n", entity.FieldSpecies, "Dog"},
		{"pet name cleaned", "Pet: Max (3)", entity.FieldPetName, "Max"},
		{"pet name keeps accents and hyphens", "Pet: Zoé-Lou O'Neil", entity.FieldPetName, "Zoé-Lou O'Neil"},
		{"owner collapses spaces", "Owner:  Jane     Doe", entity.FieldOwnerName, "Jane Doe"},
		{"age needs a digit", "Age: unknown\nThe dog is 7 years old.", entity.FieldAge, "7 years"},
		{"bare label followed by another label", "Date Of Birth: 2019-01-01\nDate: 2024-05-01", entity.FieldDate, "2024-05-01"},
		{"empty label line skipped", "Species:\nSpecies: Rabbit", entity.FieldSpecies, "Rabbit"},
		{"block stops at next label", "Diagnosis: Otitis\nsecond line of notes\nTreatment: Drops", entity.FieldDiagnosis, "Otitis\nsecond line of notes"},
		{"block repeated label stripped", "Treatment: Treatment - rest and fluids", entity.FieldTreatment, "rest and fluids"},
		{"block until end of text", "Plan: Recheck\nin two weeks", entity.FieldTreatment, "Recheck\nin two weeks"},
		{"vet from free text", "Seen today by Dr. Ana Lopez", entity.FieldVeterinarian, "Dr. Ana Lopez"},
		{"date from free text", "Visit on 2024-03-01 went well", entity.FieldDate, "2024-03-01"},
		{"day first date from free text", "Visit on 03/14/2024 went well", entity.FieldDate, "03/14/2024"},
		{"breed from free text", "A friendly beagle", entity.FieldBreed, "beagle"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.raw)[tt.field])
		})
	}
}

func TestExtractSectionHeaders(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want entity.Fields
	}{
		{
			name: "upper case headers above labelled lines",
			raw:  "PATIENT INFORMATION\nName: Max\nSpecies: Dog\nOWNER INFORMATION\nOwner: John Smith",
			want: entity.Fields{
				entity.FieldPetName:   "Max",
				entity.FieldSpecies:   "Dog",
				entity.FieldOwnerName: "John Smith",
			},
		},
		{
			name: "title before veterinarian line",
			raw:  "Vet Clinic Report\nVeterinarian: Dr. Jane Wilson",
			want: entity.Fields{entity.FieldVeterinarian: "Dr. Jane Wilson"},
		},
		{
			name: "mixed case section header",
			raw:  "Patient Information\nPatient Name: Luna\nSpecies: Cat",
			want: entity.Fields{entity.FieldPetName: "Luna", entity.FieldSpecies: "Cat"},
		},
		{
			name: "header only",
			raw:  "PATIENT DETAILS\nSpecies: Cat",
			want: entity.Fields{entity.FieldSpecies: "Cat"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.raw))
		})
	}
}

func TestExtractSeparatedLabelBeatsEarlierBareLabel(t *testing.T) {
	got := Extract("Patient Max Junior\nPatient Name: Rocky")
	assert.Equal(t, "Rocky", got[entity.FieldPetName])

	// A bare label still resolves when no separated one exists.
	got = Extract("'Animal Name Bella\nSpecies: Dog")
	assert.Equal(t, "Bella", got[entity.FieldPetName])
}

func TestExtractOwnerNameIsNotPetName(t *testing.T) {
	got := Extract("Owner's Name: Ana Lopez\nSpecies: Cat")

	assert.Equal(t, "Ana Lopez", got[entity.FieldOwnerName])
	assert.NotContains(t, got, entity.FieldPetName)

	got = Extract("Clinic visit\nName: Toby")
	assert.Equal(t, "Toby", got[entity.FieldPetName])
}

func TestExtractDeterministic(t *testing.T) {
	first := Extract(englishRecord)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Extract(englishRecord))
	}
	assert.Equal(t, first, Extract(textnorm.Normalize(englishRecord)))
}

func TestExtractOnlyKnownFields(t *testing.T) {
	got := Extract(englishRecord + "\nWeight: 30kg\nColor: Golden")
	for k, v := range got {
		assert.True(t, entity.IsField(k), k)
		assert.NotEmpty(t, v)
	}
}

func TestPatterns(t *testing.T) {
	for _, f := range entity.FieldNames {
		ps := Patterns(f)
		require.NotEmpty(t, ps, f)
		assert.Equal(t, LocaleEN, ps[0].Locale, f)
		assert.False(t, ps[0].bare, f)
		seenFallback, seenBare := false, false
		for _, p := range ps {
			assert.Equal(t, f, p.Field)
			if p.Locale == LocaleFallback {
				seenFallback = true
				continue
			}
			assert.False(t, seenFallback, "labeled pattern after fallback for %s", f)
			if p.bare {
				seenBare = true
				continue
			}
			assert.False(t, seenBare, "separated pattern after bare pattern for %s", f)
		}
		if f == entity.FieldDiagnosis || f == entity.FieldTreatment {
			assert.Equal(t, Block, ps[0].Mode)
		} else {
			assert.Equal(t, SingleLine, ps[0].Mode)
		}
	}
}

func TestExtractorLogs(t *testing.T) {
	e := NewExtractor(nil)
	assert.Equal(t, Extract(englishRecord), e.Extract(context.Background(), englishRecord))
}
