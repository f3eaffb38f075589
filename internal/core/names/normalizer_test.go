package names

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agenthands/kinlink/internal/core/model"
)

func birth(id string, names model.Names) *model.Birth {
	return &model.Birth{RecordID: id, StdID: "s" + id, Name: names}
}

func TestExpandPatronymic(t *testing.T) {
	assert.Equal(t, "andersdotter", ExpandPatronymic("andersdr"))
	assert.Equal(t, "andersdotter", ExpandPatronymic("andersdtr"))
	assert.Equal(t, "persson", ExpandPatronymic("perss:n"))
	assert.Equal(t, "olsson", ExpandPatronymic("olsson"))
	assert.Equal(t, "dr", ExpandPatronymic("dr"))
	assert.Equal(t, "--", ExpandPatronymic("--"))
}

func TestStripParenthetical(t *testing.T) {
	assert.Equal(t, "Lisa", StripParenthetical("Lisa (född Berg)"))
	assert.Equal(t, "Lisa", StripParenthetical("Lisa"))
	assert.Equal(t, "a (b) c", StripParenthetical("a (b) c"))
	assert.Equal(t, "x)", StripParenthetical("x)"))
}

func TestNormaliseTriple_Initials(t *testing.T) {
	x := birth("1", model.Names{model.MotherForename: "M."})
	y := birth("2", model.Names{model.MotherForename: "Maria"})
	z := birth("3", model.Names{model.MotherForename: "maria"})

	New().NormaliseTriple(model.Triple{X: x, Y: y, Z: z})

	assert.Equal(t, "maria", x.Name[model.MotherForename])
	assert.Equal(t, "maria", y.Name[model.MotherForename])
	assert.Equal(t, "maria", z.Name[model.MotherForename])
}

func TestNormaliseTriple_InitialsDisagree(t *testing.T) {
	x := birth("1", model.Names{model.FatherForename: "Anna"})
	y := birth("2", model.Names{model.FatherForename: "A"})
	z := birth("3", model.Names{model.FatherForename: "Agda"})

	New().NormaliseTriple(model.Triple{X: x, Y: y, Z: z})

	assert.Equal(t, "a", x.Name[model.FatherForename])
	assert.Equal(t, "a", y.Name[model.FatherForename])
	assert.Equal(t, "a", z.Name[model.FatherForename])
}

func TestNormaliseTriple_TokensAndSuffixes(t *testing.T) {
	x := birth("1", model.Names{model.MotherForename: "Anna Maria", model.FatherSurname: "Jonss:n (torpare)"})
	y := birth("2", model.Names{model.MotherForename: "Maria", model.FatherSurname: "Jonsson"})
	z := birth("3", model.Names{model.MotherForename: "Kajsa", model.FatherSurname: "--"})

	New().NormaliseTriple(model.Triple{X: x, Y: y, Z: z})

	assert.Equal(t, "maria", x.Name[model.MotherForename])
	assert.Equal(t, "kajsa", z.Name[model.MotherForename])
	assert.Equal(t, "jonsson", x.Name[model.FatherSurname])
	assert.Equal(t, "--", z.Name[model.FatherSurname])
}

func TestNormaliseTriple_Unmatched(t *testing.T) {
	x := birth("1", model.Names{})
	y := birth("2", model.Names{model.Forename: "(okänd)"})
	z := birth("3", model.Names{model.Forename: "Per"})

	assert.NotPanics(t, func() {
		New().NormaliseTriple(model.Triple{X: x, Y: y, Z: z})
	})
	assert.Equal(t, "", x.Name[model.Forename])
	assert.Equal(t, "", y.Name[model.Forename])
	assert.Equal(t, "per", z.Name[model.Forename])
}
