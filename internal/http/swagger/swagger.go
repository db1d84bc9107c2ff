// Package swagger serves the catalog API contract and a browsable UI for it.
package swagger

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"

	apicontract "github.com/tuanvumaihuynh/storefront-catalog/api-contract"
)

const (
	docsPath     = "/docs"
	contractYAML = "/docs/openapi.yml"
	contractJSON = "/docs/openapi.json"

	uiVersion = "5.29.3"
)

var page = template.Must(template.New("docs").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>{{.Title}} {{.Version}}</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@{{.UIVersion}}/swagger-ui.css" />
</head>
<body>
<div id="catalog-docs"></div>
<script src="https://unpkg.com/swagger-ui-dist@{{.UIVersion}}/swagger-ui-bundle.js" crossorigin></script>
<script>
  window.onload = () => {
    window.ui = SwaggerUIBundle({
      url: {{.ContractURL}},
      dom_id: '#catalog-docs',
      deepLinking: true,
      persistAuthorization: true,
      tryItOutEnabled: true,
      defaultModelsExpandDepth: 0,
    });
  };
</script>
</body>
</html>
`))

// Register mounts the docs page and the contract in YAML and JSON form.
// The embedded contract is loaded once so a broken document fails at startup
// instead of on the first docs request.
func Register(r chi.Router) error {
	raw := apicontract.GetSpecBytes()

	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return fmt.Errorf("load api contract: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return fmt.Errorf("validate api contract: %w", err)
	}

	asJSON, err := doc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal api contract: %w", err)
	}

	var html bytes.Buffer
	err = page.Execute(&html, struct {
		Title       string
		Version     string
		UIVersion   string
		ContractURL string
	}{
		Title:       doc.Info.Title,
		Version:     doc.Info.Version,
		UIVersion:   uiVersion,
		ContractURL: contractYAML,
	})
	if err != nil {
		return fmt.Errorf("render docs page: %w", err)
	}

	r.Get(docsPath, serve("text/html; charset=utf-8", html.Bytes()))
	r.Get(contractYAML, serve("application/yaml", raw))
	r.Get(contractJSON, serve("application/json", asJSON))
	return nil
}

func serve(contentType string, body []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		//nolint:errcheck
		w.Write(body)
	}
}
