package server

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"cecilia/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlogPostPage(t *testing.T) {
	env := newTestEnv(t)
	post := env.seedPost(t, "Checkout em 1 clique", "checkout-1-clique")

	resp := env.do(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/blog/%d/checkout-1-clique", post.ID), nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	body := readBody(t, resp)
	assert.Contains(t, body, "<h1>Checkout em 1 clique</h1>")
	assert.Contains(t, body, "Body of Checkout em 1 clique")
}

func TestBlogSlugDriftRedirects(t *testing.T) {
	env := newTestEnv(t)
	post := env.seedPost(t, "Nome antigo", "nome-antigo")

	newSlug := "nome-novo"
	_, err := env.srv.postService.UpdatePost(context.Background(), post.ID, service.UpdatePostInput{URLName: &newSlug})
	require.NoError(t, err)

	resp := env.do(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/blog/%d/nome-antigo", post.ID), nil))
	assert.Equal(t, fiber.StatusMovedPermanently, resp.StatusCode)
	assert.Equal(t, fmt.Sprintf("/blog/%d/nome-novo", post.ID), resp.Header.Get("Location"))

	resp = env.do(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/blog/%d", post.ID), nil))
	assert.Equal(t, fiber.StatusMovedPermanently, resp.StatusCode)
	assert.Equal(t, fmt.Sprintf("/blog/%d/nome-novo", post.ID), resp.Header.Get("Location"))
}

func TestBlogNotFoundPages(t *testing.T) {
	env := newTestEnv(t)
	hidden := env.seedPost(t, "Rascunho", "rascunho", draft)

	for _, path := range []string{
		fmt.Sprintf("/blog/%d/rascunho", hidden.ID),
		fmt.Sprintf("/blog/%d", hidden.ID),
		"/blog/999/nada",
		"/blog/abc/nada",
		"/blog?page=5",
	} {
		resp := env.do(httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode, path)
		assert.Contains(t, readBody(t, resp), "Página não encontrada", path)
	}
}

func TestBlogIndexPage(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 10; i++ {
		env.seedPost(t, fmt.Sprintf("Artigo %d", i), fmt.Sprintf("artigo-%d", i))
	}

	resp := env.do(httptest.NewRequest(http.MethodGet, "/blog", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "10 artigos")
	assert.Contains(t, body, `href="/blog?page=2"`)

	resp = env.do(httptest.NewRequest(http.MethodGet, "/blog?page=2", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), `href="/blog?page=1"`)
}
