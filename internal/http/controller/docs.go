package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/product-catalog/internal/http/openapi"
)

const docsPage = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>Product Catalog API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/api/openapi.yaml',
        dom_id: '#swagger-ui'
      });
    </script>
  </body>
</html>`

// OpenAPI serves the embedded OpenAPI document.
func (con *Controller) OpenAPI(c *gin.Context) {
	c.Data(http.StatusOK, "application/yaml", openapi.YAML)
}

// Docs serves a Swagger UI page for the OpenAPI document.
func (con *Controller) Docs(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(docsPage))
}
