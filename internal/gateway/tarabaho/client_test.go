package tarabaho_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tarabaho-web/internal/domain"
	"tarabaho-web/internal/gateway/tarabaho"
	"tarabaho-web/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, h http.Handler) *tarabaho.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := tarabaho.NewClient(srv.URL+"/", 5*time.Second)
	require.NoError(t, err)
	return c
}

func TestNewClientRejectsBadURL(t *testing.T) {
	_, err := tarabaho.NewClient("", time.Second)
	assert.Error(t, err)
	_, err = tarabaho.NewClient("not a url", time.Second)
	assert.Error(t, err)
}

func TestLogin(t *testing.T) {
	t.Run("Should call the graduate token endpoint", func(t *testing.T) {
		c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/graduate/token", r.URL.Path)

			var creds domain.Credentials
			require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
			assert.Equal(t, "grad1", creds.Username)
			assert.Equal(t, "secret1", creds.Password)

			_, _ = w.Write([]byte(`{"token":"abc"}`))
		}))

		token, err := c.Login(t.Context(), domain.RoleGraduate, domain.Credentials{Username: "grad1", Password: "secret1"})
		require.NoError(t, err)
		assert.Equal(t, "abc", token)
	})

	t.Run("Should call the user token endpoint", func(t *testing.T) {
		c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/user/token", r.URL.Path)
			_, _ = w.Write([]byte(`{"token":"u-token"}`))
		}))

		token, err := c.Login(t.Context(), domain.RoleUser, domain.Credentials{Username: "client", Password: "secret1"})
		require.NoError(t, err)
		assert.Equal(t, "u-token", token)
	})

	t.Run("Should carry the API message on rejected credentials", func(t *testing.T) {
		c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Bad credentials"}`))
		}))

		_, err := c.Login(t.Context(), domain.RoleUser, domain.Credentials{Username: "x", Password: "y"})
		require.Error(t, err)
		assert.True(t, apperror.IsUnauthorized(err))
		assert.Equal(t, "Bad credentials", err.Error())
	})

	t.Run("Should fall back to a generic message without a body", func(t *testing.T) {
		c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))

		_, err := c.Login(t.Context(), domain.RoleUser, domain.Credentials{Username: "x", Password: "y"})
		require.Error(t, err)
		assert.Equal(t, "Invalid credentials", err.Error())
	})

	t.Run("Should fail on a 2xx without a token", func(t *testing.T) {
		c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		}))

		_, err := c.Login(t.Context(), domain.RoleUser, domain.Credentials{Username: "x", Password: "y"})
		assert.True(t, apperror.IsUnauthorized(err))
	})
}

func TestErrorDecoding(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte("Email already exists"))
	}))

	err := c.CheckGraduateDuplicates(t.Context(), domain.DuplicateCheck{Username: "grad1"})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, apperror.CodeOf(err))
	assert.Equal(t, "Email already exists", err.Error())
}

func TestNetworkErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	c, err := tarabaho.NewClient(srv.URL, time.Second)
	require.NoError(t, err)
	srv.Close()

	_, err = c.SearchPortfolios(t.Context(), "tok", "welder")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadGateway, apperror.CodeOf(err))
	assert.Contains(t, err.Error(), "Could not reach the Tarabaho service")
}

func TestGetPortfolioByGraduate(t *testing.T) {
	t.Run("Should map 404 to NotFound", func(t *testing.T) {
		c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/portfolio/graduate/7/portfolio", r.URL.Path)
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusNotFound)
		}))

		_, err := c.GetPortfolioByGraduate(t.Context(), "tok", 7)
		assert.True(t, apperror.IsNotFound(err))
	})

	t.Run("Should normalize missing collections", func(t *testing.T) {
		c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"id":3,"fullName":"Juan","skills":[{"id":9,"name":"Welding","type":"TECHNICAL"}]}`))
		}))

		p, err := c.GetPortfolioByGraduate(t.Context(), "tok", 7)
		require.NoError(t, err)
		assert.Equal(t, int64(3), p.ID)
		require.Len(t, p.Skills, 1)
		assert.Equal(t, domain.PersistedID(9), p.Skills[0].ID)
		assert.NotNil(t, p.Experiences)
		assert.Equal(t, domain.VisibilityPublic, p.Visibility)
		assert.Equal(t, domain.DefaultTemplate, p.Template)
	})
}

func TestCreatePortfolioSendsNullForPendingChildren(t *testing.T) {
	var body map[string]interface{}
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/portfolio/graduate/7/portfolio", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"id":50,"skills":[{"id":1,"name":"Welding","type":"TECHNICAL"},{"id":2,"name":"Masonry","type":"TECHNICAL"}]}`))
	}))

	p := &domain.PortfolioAggregate{GraduateID: 7, CertificateIDs: []int64{100}}
	p.Normalize()
	p.Skills.Add(domain.Skill{SkillFields: domain.SkillFields{Name: "Welding", Category: domain.SkillTechnical}})
	p.Skills = append(p.Skills, domain.Skill{ID: domain.PersistedID(2), SkillFields: domain.SkillFields{Name: "Masonry", Category: domain.SkillTechnical}})

	saved, err := c.CreatePortfolio(t.Context(), "tok", 7, p)
	require.NoError(t, err)
	assert.Equal(t, int64(50), saved.ID)

	skills := body["skills"].([]interface{})
	require.Len(t, skills, 2)
	assert.Nil(t, skills[0].(map[string]interface{})["id"])
	assert.Equal(t, float64(2), skills[1].(map[string]interface{})["id"])
	assert.Equal(t, "Welding", skills[0].(map[string]interface{})["name"])
	assert.Equal(t, []interface{}{float64(100)}, body["certificateIds"])
	assert.Equal(t, "PUBLIC", body["visibility"])
	assert.Nil(t, body["id"])
	assert.Nil(t, body["avatar"])
}

func TestCreateCertificateMultipart(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/certificate", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "SMAW NC II", r.FormValue("courseName"))
		assert.Equal(t, "C-1", r.FormValue("certificateNumber"))
		assert.Equal(t, "2023-01-10", r.FormValue("issueDate"))
		assert.Equal(t, "7", r.FormValue("graduateId"))

		f, hdr, err := r.FormFile("certificateFile")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "cert.pdf", hdr.Filename)
		assert.Equal(t, "%PDF-1.4", string(data))

		_, _ = w.Write([]byte(`{"id":101,"courseName":"SMAW NC II","certificateNumber":"C-1","issueDate":"2023-01-10"}`))
	}))

	cert := domain.Certificate{CourseName: "SMAW NC II", CertificateNumber: "C-1", IssueDate: "2023-01-10"}
	created, err := c.CreateCertificate(t.Context(), "tok", 7, cert, &domain.FileUpload{Filename: "cert.pdf", Data: []byte("%PDF-1.4")})
	require.NoError(t, err)
	assert.Equal(t, domain.PersistedID(101), created.ID)
}

func TestUpdateCertificateNeedsServerID(t *testing.T) {
	c := newClient(t, http.NotFoundHandler())
	_, err := c.UpdateCertificate(t.Context(), "tok", domain.Certificate{ID: domain.NewPendingID()}, nil)
	assert.Error(t, err)
}

func TestUploadGraduatePicture(t *testing.T) {
	cases := map[string]string{
		"graduate body": `{"id":7,"profilePicture":"https://cdn.example/p.jpg"}`,
		"url body":      `{"url":"https://cdn.example/p.jpg"}`,
		"plain text":    `https://cdn.example/p.jpg`,
	}
	for name, reply := range cases {
		t.Run(name, func(t *testing.T) {
			c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/graduate/7/upload-picture", r.URL.Path)
				_, _ = w.Write([]byte(reply))
			}))

			url, err := c.UploadGraduatePicture(t.Context(), "tok", 7, domain.FileUpload{Filename: "a.jpg", Data: []byte{0xFF, 0xD8, 0xFF}})
			require.NoError(t, err)
			assert.Equal(t, "https://cdn.example/p.jpg", url)
		})
	}
}

func TestSearchPortfolios(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/portfolio/search", r.URL.Path)
		assert.Equal(t, "pipe welder", r.URL.Query().Get("query"))
		_, _ = w.Write([]byte(`null`))
	}))

	results, err := c.SearchPortfolios(t.Context(), "", "pipe welder")
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestRecoverGraduateTokenUsesCookieJar(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/graduate/token", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "s1", Path: "/"})
		_, _ = w.Write([]byte(`{"token":"abc"}`))
	})
	mux.HandleFunc("/api/graduate/get-token", func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie("JSESSIONID"); err != nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"token":"abc"}`))
	})
	c := newClient(t, mux)

	_, err := c.RecoverGraduateToken(t.Context())
	assert.True(t, apperror.IsNotFound(err))

	_, err = c.Login(t.Context(), domain.RoleGraduate, domain.Credentials{Username: "grad1", Password: "secret1"})
	require.NoError(t, err)

	token, err := c.RecoverGraduateToken(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "abc", token)
}
