package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/humidor-app/humidor-be/internal/models"
)

func TestBrandCRUD(t *testing.T) {
	svc := NewOrganizerService(newTestDB(t))

	country := "Nicaragua"
	created, err := svc.CreateBrand(models.Brand{Name: "Padron", Country: &country})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	require.NotNil(t, created.Country)
	assert.Equal(t, "Nicaragua", *created.Country)

	created.Name = "Padrón"
	updated, err := svc.UpdateBrand(created.ID, created)
	require.NoError(t, err)
	assert.Equal(t, "Padrón", updated.Name)

	brands, err := svc.GetAllBrands()
	require.NoError(t, err)
	require.Len(t, brands, 1)

	require.NoError(t, svc.DeleteBrand(created.ID))
	brands, err = svc.GetAllBrands()
	require.NoError(t, err)
	assert.Empty(t, brands)
}

func TestRingGaugeCommonNamesRoundTrip(t *testing.T) {
	svc := NewOrganizerService(newTestDB(t))

	created, err := svc.CreateRingGauge(models.RingGauge{
		Gauge:       50,
		CommonNames: []string{"robusto", "rothschild"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"robusto", "rothschild"}, created.CommonNames)

	// Nil names survive as nil, not as an empty JSON array.
	bare, err := svc.CreateRingGauge(models.RingGauge{Gauge: 64})
	require.NoError(t, err)
	assert.Nil(t, bare.CommonNames)

	created.CommonNames = []string{"robusto"}
	updated, err := svc.UpdateRingGauge(created.ID, created)
	require.NoError(t, err)
	assert.Equal(t, []string{"robusto"}, updated.CommonNames)

	gauges, err := svc.GetAllRingGauges()
	require.NoError(t, err)
	assert.Len(t, gauges, 2)
}

func TestStrengthsOrderedByLevel(t *testing.T) {
	svc := NewOrganizerService(newTestDB(t))

	for _, s := range []models.Strength{
		{Name: "Full", Level: 5},
		{Name: "Mild", Level: 1},
		{Name: "Medium", Level: 3},
	} {
		_, err := svc.CreateStrength(s)
		require.NoError(t, err)
	}

	strengths, err := svc.GetAllStrengths()
	require.NoError(t, err)
	require.Len(t, strengths, 3)
	assert.Equal(t, "Mild", strengths[0].Name)
	assert.Equal(t, "Medium", strengths[1].Name)
	assert.Equal(t, "Full", strengths[2].Name)
}

func TestOriginCRUD(t *testing.T) {
	svc := NewOrganizerService(newTestDB(t))

	region := "Estelí"
	created, err := svc.CreateOrigin(models.Origin{Name: "Estelí", Country: "Nicaragua", Region: &region})
	require.NoError(t, err)
	assert.Equal(t, "Nicaragua", created.Country)

	origins, err := svc.GetAllOrigins()
	require.NoError(t, err)
	require.Len(t, origins, 1)

	require.NoError(t, svc.DeleteOrigin(created.ID))
}

func TestSizeCRUD(t *testing.T) {
	svc := NewOrganizerService(newTestDB(t))

	length := 5.0
	gauge := 50
	created, err := svc.CreateSize(models.Size{Name: "Robusto", LengthInches: &length, RingGauge: &gauge})
	require.NoError(t, err)
	require.NotNil(t, created.LengthInches)
	assert.Equal(t, 5.0, *created.LengthInches)

	sizes, err := svc.GetAllSizes()
	require.NoError(t, err)
	require.Len(t, sizes, 1)
}
