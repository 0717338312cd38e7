package v1_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/keyline/keyline/internal/api/v1"
	"github.com/keyline/keyline/internal/domain"
)

// ---------------------------------------------------------------------------
// POST /brand/license-keys
// ---------------------------------------------------------------------------

func TestCreateLicenseKey(t *testing.T) {
	t.Parallel()

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)

		_, api := humatest.New(t)
		v1.RegisterBrandRoutes(api, f.provisioner, f.querier)

		resp := api.PostCtx(brandCtx(f.brand.ID), "/brand/license-keys", map[string]any{
			"customer_email": "buyer@example.com",
			"products": []map[string]any{
				{"product_id": f.product.ID.String(), "max_seats": 5},
			},
		})

		require.Equal(t, http.StatusOK, resp.Code)

		var body v1.LicenseKeyResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Regexp(t, `^ACME(-[0-9A-F]{8}){4}$`, body.Key)
		assert.Equal(t, "buyer@example.com", body.CustomerEmail)
		require.Len(t, body.Licenses, 1)
		assert.Equal(t, "widget-pro", body.Licenses[0].ProductSlug)
		require.NotNil(t, body.Licenses[0].MaxSeats)
		assert.Equal(t, 5, *body.Licenses[0].MaxSeats)
	})

	t.Run("missing_brand_context_forbidden", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)

		_, api := humatest.New(t)
		v1.RegisterBrandRoutes(api, f.provisioner, f.querier)

		resp := api.Post("/brand/license-keys", map[string]any{
			"customer_email": "buyer@example.com",
			"products": []map[string]any{
				{"product_id": f.product.ID.String()},
			},
		})
		assert.Equal(t, http.StatusForbidden, resp.Code)
	})

	t.Run("foreign_product_rejected", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)

		_, api := humatest.New(t)
		v1.RegisterBrandRoutes(api, f.provisioner, f.querier)

		resp := api.PostCtx(brandCtx(f.brand.ID), "/brand/license-keys", map[string]any{
			"customer_email": "buyer@example.com",
			"products": []map[string]any{
				{"product_id": uuid.NewString()},
			},
		})
		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)

		var errBody map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&errBody))
		assert.Equal(t, "invalid_product", errBody["detail"])
	})

	t.Run("empty_products_rejected", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)

		_, api := humatest.New(t)
		v1.RegisterBrandRoutes(api, f.provisioner, f.querier)

		resp := api.PostCtx(brandCtx(f.brand.ID), "/brand/license-keys", map[string]any{
			"customer_email": "buyer@example.com",
			"products":       []map[string]any{},
		})
		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	})
}

// ---------------------------------------------------------------------------
// GET /brand/license-keys/{key}
// ---------------------------------------------------------------------------

func TestGetLicenseKey(t *testing.T) {
	t.Parallel()

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		key := f.provision(t, intPtr(2), nil)

		_, api := humatest.New(t)
		v1.RegisterBrandRoutes(api, f.provisioner, f.querier)

		resp := api.GetCtx(brandCtx(f.brand.ID), "/brand/license-keys/"+key.Key.Key)
		require.Equal(t, http.StatusOK, resp.Code)

		var body v1.LicenseKeyResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, key.Key.Key, body.Key)
		require.Len(t, body.Licenses, 1)
		assert.Equal(t, 0, body.Licenses[0].ActiveSeats)
	})

	t.Run("other_brand_key_not_found", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		key := f.provision(t, nil, nil)

		_, api := humatest.New(t)
		v1.RegisterBrandRoutes(api, f.provisioner, f.querier)

		// Authenticated as a different brand.
		resp := api.GetCtx(brandCtx(uuid.New()), "/brand/license-keys/"+key.Key.Key)
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}

// ---------------------------------------------------------------------------
// POST /brand/license-keys/{key}/licenses
// ---------------------------------------------------------------------------

func TestAddLicense(t *testing.T) {
	t.Parallel()

	t.Run("duplicate_product_conflict", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		key := f.provision(t, nil, nil)

		_, api := humatest.New(t)
		v1.RegisterBrandRoutes(api, f.provisioner, f.querier)

		resp := api.PostCtx(brandCtx(f.brand.ID), "/brand/license-keys/"+key.Key.Key+"/licenses", map[string]any{
			"product_id": f.product.ID.String(),
		})
		assert.Equal(t, http.StatusConflict, resp.Code)

		var errBody map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&errBody))
		assert.Equal(t, "license_already_exists", errBody["detail"])
	})
}

// ---------------------------------------------------------------------------
// PATCH /brand/licenses/{licenseID}/status
// ---------------------------------------------------------------------------

func TestUpdateLicenseStatus(t *testing.T) {
	t.Parallel()

	t.Run("suspend", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		key := f.provision(t, nil, nil)
		licID := key.Licenses[0].License.ID

		_, api := humatest.New(t)
		v1.RegisterBrandRoutes(api, f.provisioner, f.querier)

		resp := api.PatchCtx(brandCtx(f.brand.ID), "/brand/licenses/"+licID.String()+"/status", map[string]any{
			"status": "suspended",
		})
		require.Equal(t, http.StatusOK, resp.Code)

		var body v1.LicenseResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "suspended", body.Status)
	})

	t.Run("cancelled_is_terminal", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		key := f.provision(t, nil, nil)
		licID := key.Licenses[0].License.ID

		_, api := humatest.New(t)
		v1.RegisterBrandRoutes(api, f.provisioner, f.querier)

		resp := api.PatchCtx(brandCtx(f.brand.ID), "/brand/licenses/"+licID.String()+"/status", map[string]any{
			"status": "cancelled",
		})
		require.Equal(t, http.StatusOK, resp.Code)

		resp = api.PatchCtx(brandCtx(f.brand.ID), "/brand/licenses/"+licID.String()+"/status", map[string]any{
			"status": "valid",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	})

	t.Run("foreign_license_not_found", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		key := f.provision(t, nil, nil)
		licID := key.Licenses[0].License.ID

		_, api := humatest.New(t)
		v1.RegisterBrandRoutes(api, f.provisioner, f.querier)

		resp := api.PatchCtx(brandCtx(uuid.New()), "/brand/licenses/"+licID.String()+"/status", map[string]any{
			"status": "suspended",
		})
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}

// ---------------------------------------------------------------------------
// GET /brand/licenses?email=
// ---------------------------------------------------------------------------

func TestFindLicenseKeys(t *testing.T) {
	t.Parallel()

	t.Run("case_insensitive_lookup", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		key := f.provision(t, nil, nil)

		_, api := humatest.New(t)
		v1.RegisterBrandRoutes(api, f.provisioner, f.querier)

		resp := api.GetCtx(brandCtx(f.brand.ID), "/brand/licenses?email=BUYER@example.COM")
		require.Equal(t, http.StatusOK, resp.Code)

		var body []v1.LicenseKeyResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.Len(t, body, 1)
		assert.Equal(t, key.Key.Key, body[0].Key)
	})

	t.Run("no_match_empty_list", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)

		_, api := humatest.New(t)
		v1.RegisterBrandRoutes(api, f.provisioner, f.querier)

		resp := api.GetCtx(brandCtx(f.brand.ID), "/brand/licenses?email=nobody@example.com")
		require.Equal(t, http.StatusOK, resp.Code)

		var body []v1.LicenseKeyResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Empty(t, body)
	})
}

// ---------------------------------------------------------------------------
// GET /brand/license-keys/{key}/activations
// ---------------------------------------------------------------------------

func TestListActivationsEndpoint(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	key := f.provision(t, intPtr(3), nil)

	ctx := context.Background()
	_, err := f.activator.Activate(ctx, key.Key.Key, "widget-pro", "srv-1", "", domain.ActivationMeta{})
	require.NoError(t, err)
	_, err = f.activator.Activate(ctx, key.Key.Key, "widget-pro", "srv-2", "", domain.ActivationMeta{})
	require.NoError(t, err)
	_, err = f.activator.Deactivate(ctx, key.Key.Key, "widget-pro", "srv-1")
	require.NoError(t, err)

	_, api := humatest.New(t)
	v1.RegisterBrandRoutes(api, f.provisioner, f.querier)

	resp := api.GetCtx(brandCtx(f.brand.ID), "/brand/license-keys/"+key.Key.Key+"/activations?product_slug=widget-pro")
	require.Equal(t, http.StatusOK, resp.Code)

	var body []v1.ActivationResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body, 2)

	active := 0
	for _, a := range body {
		if a.Active {
			active++
		}
	}
	assert.Equal(t, 1, active)
}

// ---------------------------------------------------------------------------
// GET /brand/license-keys/{key}/audit
// ---------------------------------------------------------------------------

func TestAuditTrailEndpoint(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	key := f.provision(t, nil, nil)

	_, api := humatest.New(t)
	v1.RegisterBrandRoutes(api, f.provisioner, f.querier)

	resp := api.GetCtx(brandCtx(f.brand.ID), "/brand/license-keys/"+key.Key.Key+"/audit")
	require.Equal(t, http.StatusOK, resp.Code)

	var body []v1.AuditEventResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body, 1)
	assert.Equal(t, "license_key_created", body[0].Action)
}
