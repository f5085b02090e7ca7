package server

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/nao1215/devconnector/internal/db"
	"github.com/nao1215/devconnector/internal/github"
	"github.com/nao1215/devconnector/pkg/logging"
	"github.com/nao1215/devconnector/pkg/middleware"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testJWTSecret はテスト用のトークン署名鍵。
const testJWTSecret = "test-secret-key"

// fakeGitHub はGitHub APIの代わりに固定の応答を返す。
type fakeGitHub struct {
	body json.RawMessage
	err  error
}

func (f *fakeGitHub) Repos(_ context.Context, _ string) (json.RawMessage, error) {
	return f.body, f.err
}

// newTestServer はインメモリSQLiteを使うテスト用サーバーを生成する。
func newTestServer(t *testing.T) *Server {
	t.Helper()

	conn, err := db.Open(context.Background(), ":memory:", logging.Discard())
	if err != nil {
		t.Fatalf("インメモリDB接続に失敗: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	return newServerWithDB(t, conn, &fakeGitHub{body: json.RawMessage(`[]`)})
}

func newServerWithDB(t *testing.T, conn *sql.DB, gh RepoLister) *Server {
	t.Helper()
	return NewServer("0", Deps{
		DB:          conn,
		Codec:       middleware.NewTokenCodec(testJWTSecret, time.Hour, "devconnector"),
		GitHub:      gh,
		Logger:      logging.Discard(),
		CORSOrigins: []string{"http://localhost:3000"},
		BcryptCost:  bcrypt.MinCost,
	})
}

// do はリクエストを実行してレスポンスを返す。bodyがnilでなければJSONとして送る。
func do(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("リクエストボディのエンコードに失敗: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(middleware.HeaderAuthToken, token)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

// decode はレスポンスボディをvにデコードする。
func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("レスポンスのデコードに失敗: %v\nbody: %s", err, w.Body.String())
	}
}

// signup はユーザーを登録してトークンを返す。
func signup(t *testing.T, s *Server, name, email string) string {
	t.Helper()
	w := do(t, s, http.MethodPost, "/api/users", "", gin.H{"name": name, "email": email, "password": "secret1"})
	if w.Code != http.StatusOK {
		t.Fatalf("登録に失敗: status=%d body=%s", w.Code, w.Body.String())
	}
	var res struct {
		Token string `json:"token"`
	}
	decode(t, w, &res)
	return res.Token
}

type messageBody struct {
	Message string `json:"message"`
}

type errorsBody struct {
	Errors []struct {
		Msg      string `json:"msg"`
		Param    string `json:"param"`
		Location string `json:"location"`
	} `json:"errors"`
}

func assertStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("ステータスコード = %d, want %d\nbody: %s", w.Code, want, w.Body.String())
	}
}

func assertMessage(t *testing.T, w *httptest.ResponseRecorder, want string) {
	t.Helper()
	var body messageBody
	decode(t, w, &body)
	if body.Message != want {
		t.Errorf("message = %q, want %q", body.Message, want)
	}
}

// TestAuthGate は認証ゲートが保護されたルートを守ることを検証する。
func TestAuthGate(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	protected := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/auth"},
		{http.MethodGet, "/api/profile/me"},
		{http.MethodPost, "/api/profile"},
		{http.MethodDelete, "/api/profile"},
		{http.MethodPut, "/api/profile/experience"},
		{http.MethodDelete, "/api/profile/education/" + uuid.NewString()},
		{http.MethodGet, "/api/posts"},
		{http.MethodDelete, "/api/posts/" + uuid.NewString()},
		{http.MethodPut, "/api/posts/like/" + uuid.NewString()},
		{http.MethodDelete, "/api/posts/comment/" + uuid.NewString() + "/" + uuid.NewString()},
	}

	t.Run("ヘッダーが無い場合は401となること", func(t *testing.T) {
		t.Parallel()
		for _, r := range protected {
			w := do(t, s, r.method, r.path, "", nil)
			assertStatus(t, w, http.StatusUnauthorized)
			assertMessage(t, w, "No token, authorization denied")
		}
	})

	t.Run("別の鍵で署名されたトークンは401となること", func(t *testing.T) {
		t.Parallel()
		other := middleware.NewTokenCodec("another-secret", time.Hour, "devconnector")
		token, err := other.Sign(uuid.NewString())
		if err != nil {
			t.Fatalf("トークン生成に失敗: %v", err)
		}
		for _, r := range protected {
			w := do(t, s, r.method, r.path, token, nil)
			assertStatus(t, w, http.StatusUnauthorized)
			assertMessage(t, w, "Token is not valid")
		}
	})

	t.Run("期限切れのトークンは401となること", func(t *testing.T) {
		t.Parallel()
		claims := middleware.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
				IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			},
			User: middleware.Identity{ID: uuid.NewString()},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
		if err != nil {
			t.Fatalf("トークン生成に失敗: %v", err)
		}
		w := do(t, s, http.MethodGet, "/api/auth", token, nil)
		assertStatus(t, w, http.StatusUnauthorized)
	})
}

// TestUsersAndAuth は登録・ログイン・本人情報の取得を検証する。
func TestUsersAndAuth(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	token := signup(t, s, "Alice", "alice@example.com")

	t.Run("登録後のトークンで本人情報をパスワード抜きで取得できること", func(t *testing.T) {
		w := do(t, s, http.MethodGet, "/api/auth", token, nil)
		assertStatus(t, w, http.StatusOK)

		var got map[string]any
		decode(t, w, &got)
		if got["name"] != "Alice" || got["email"] != "alice@example.com" {
			t.Errorf("user = %v", got)
		}
		for _, key := range []string{"password", "PasswordHash", "password_hash"} {
			if _, ok := got[key]; ok {
				t.Errorf("レスポンスに %q が含まれている", key)
			}
		}
		if strings.Contains(w.Body.String(), "$2a$") {
			t.Error("レスポンスにbcryptハッシュが含まれている")
		}
	})

	t.Run("入力が不正な場合はerrors配列で400となること", func(t *testing.T) {
		w := do(t, s, http.MethodPost, "/api/users", "", gin.H{"name": "", "email": "not-an-email", "password": "123"})
		assertStatus(t, w, http.StatusBadRequest)

		var body errorsBody
		decode(t, w, &body)
		params := map[string]string{}
		for _, e := range body.Errors {
			params[e.Param] = e.Msg
			if e.Location != "body" {
				t.Errorf("location = %q, want body", e.Location)
			}
		}
		want := map[string]string{
			"name":     "Name is required",
			"email":    "Please include a valid email",
			"password": "Please enter a password with 6 or more characters",
		}
		for k, v := range want {
			if params[k] != v {
				t.Errorf("errors[%s] = %q, want %q", k, params[k], v)
			}
		}
	})

	t.Run("登録済みのメールアドレスは400となること", func(t *testing.T) {
		w := do(t, s, http.MethodPost, "/api/users", "", gin.H{"name": "A", "email": "ALICE@example.com", "password": "secret1"})
		assertStatus(t, w, http.StatusBadRequest)

		var body errorsBody
		decode(t, w, &body)
		if len(body.Errors) != 1 || body.Errors[0].Msg != "User already exists" {
			t.Errorf("errors = %+v", body.Errors)
		}
	})

	t.Run("ログインできること", func(t *testing.T) {
		w := do(t, s, http.MethodPost, "/api/auth", "", gin.H{"email": "alice@example.com", "password": "secret1"})
		assertStatus(t, w, http.StatusOK)
	})

	t.Run("誤ったパスワードは400となること", func(t *testing.T) {
		w := do(t, s, http.MethodPost, "/api/auth", "", gin.H{"email": "alice@example.com", "password": "wrong-password"})
		assertStatus(t, w, http.StatusBadRequest)

		var body errorsBody
		decode(t, w, &body)
		if len(body.Errors) != 1 || body.Errors[0].Msg != "Invalid Credentials" {
			t.Errorf("errors = %+v", body.Errors)
		}
	})

	t.Run("不正なJSONは400となること", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/auth", strings.NewReader("{"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, req)
		assertStatus(t, w, http.StatusBadRequest)
	})
}

// TestPosts は投稿・いいね・コメントを検証する。
func TestPosts(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	alice := signup(t, s, "Alice", "alice@example.com")
	bob := signup(t, s, "Bob", "bob@example.com")

	t.Run("本文が空の投稿は400となり作成されないこと", func(t *testing.T) {
		w := do(t, s, http.MethodPost, "/api/posts", alice, gin.H{"text": ""})
		assertStatus(t, w, http.StatusBadRequest)

		var body errorsBody
		decode(t, w, &body)
		if len(body.Errors) != 1 || body.Errors[0].Param != "text" || body.Errors[0].Msg != "Text is required" {
			t.Errorf("errors = %+v", body.Errors)
		}

		w = do(t, s, http.MethodGet, "/api/posts", alice, nil)
		assertStatus(t, w, http.StatusOK)
		var posts []map[string]any
		decode(t, w, &posts)
		if len(posts) != 0 {
			t.Errorf("投稿数 = %d, want 0", len(posts))
		}
	})

	w := do(t, s, http.MethodPost, "/api/posts", alice, gin.H{"text": "hello"})
	assertStatus(t, w, http.StatusOK)
	var post struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	decode(t, w, &post)
	if post.Name != "Alice" {
		t.Errorf("name = %q, want Alice", post.Name)
	}

	t.Run("他人の投稿は削除できず取得できること", func(t *testing.T) {
		w := do(t, s, http.MethodDelete, "/api/posts/"+post.ID, bob, nil)
		assertStatus(t, w, http.StatusUnauthorized)
		assertMessage(t, w, "User not authorized")

		w = do(t, s, http.MethodGet, "/api/posts/"+post.ID, bob, nil)
		assertStatus(t, w, http.StatusOK)
	})

	t.Run("不正な形式のIDは400、存在しないIDは404となること", func(t *testing.T) {
		w := do(t, s, http.MethodGet, "/api/posts/not-a-uuid", alice, nil)
		assertStatus(t, w, http.StatusBadRequest)
		assertMessage(t, w, "Post not found")

		w = do(t, s, http.MethodGet, "/api/posts/"+uuid.NewString(), alice, nil)
		assertStatus(t, w, http.StatusNotFound)
		assertMessage(t, w, "Post not found")
	})

	t.Run("2回目のいいねは400となること", func(t *testing.T) {
		w := do(t, s, http.MethodPut, "/api/posts/like/"+post.ID, bob, nil)
		assertStatus(t, w, http.StatusOK)
		var likes []map[string]string
		decode(t, w, &likes)
		if len(likes) != 1 {
			t.Fatalf("いいね数 = %d, want 1", len(likes))
		}

		w = do(t, s, http.MethodPut, "/api/posts/like/"+post.ID, bob, nil)
		assertStatus(t, w, http.StatusBadRequest)
		assertMessage(t, w, "Post already liked")
	})

	t.Run("いいねしていない投稿のいいね取り消しは400となること", func(t *testing.T) {
		w := do(t, s, http.MethodPut, "/api/posts/unlike/"+post.ID, alice, nil)
		assertStatus(t, w, http.StatusBadRequest)
		assertMessage(t, w, "Post has not yet been liked")

		w = do(t, s, http.MethodPut, "/api/posts/unlike/"+post.ID, bob, nil)
		assertStatus(t, w, http.StatusOK)
	})

	t.Run("コメントは投稿者本人のみ削除できること", func(t *testing.T) {
		w := do(t, s, http.MethodPost, "/api/posts/comment/"+post.ID, bob, gin.H{"text": "nice"})
		assertStatus(t, w, http.StatusOK)
		var comments []struct {
			ID   string `json:"id"`
			Text string `json:"text"`
		}
		decode(t, w, &comments)
		if len(comments) != 1 {
			t.Fatalf("コメント数 = %d, want 1", len(comments))
		}
		commentID := comments[0].ID

		w = do(t, s, http.MethodDelete, "/api/posts/comment/"+post.ID+"/"+commentID, alice, nil)
		assertStatus(t, w, http.StatusUnauthorized)

		w = do(t, s, http.MethodDelete, "/api/posts/comment/"+post.ID+"/"+uuid.NewString(), bob, nil)
		assertStatus(t, w, http.StatusNotFound)
		assertMessage(t, w, "Comment does not exist")

		w = do(t, s, http.MethodDelete, "/api/posts/comment/"+post.ID+"/"+commentID, bob, nil)
		assertStatus(t, w, http.StatusOK)
		decode(t, w, &comments)
		if len(comments) != 0 {
			t.Errorf("コメント数 = %d, want 0", len(comments))
		}
	})

	t.Run("投稿者は削除できること", func(t *testing.T) {
		w := do(t, s, http.MethodDelete, "/api/posts/"+post.ID, alice, nil)
		assertStatus(t, w, http.StatusOK)
		assertMessage(t, w, "Post removed")

		w = do(t, s, http.MethodGet, "/api/posts/"+post.ID, alice, nil)
		assertStatus(t, w, http.StatusNotFound)
	})
}

// TestProfiles はプロフィールと職歴・学歴、アカウント削除を検証する。
func TestProfiles(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	alice := signup(t, s, "Alice", "alice@example.com")

	t.Run("プロフィールが無い場合は400となること", func(t *testing.T) {
		w := do(t, s, http.MethodGet, "/api/profile/me", alice, nil)
		assertStatus(t, w, http.StatusBadRequest)
		assertMessage(t, w, "There is no profile for this user")
	})

	t.Run("必須項目が無い場合は400となること", func(t *testing.T) {
		w := do(t, s, http.MethodPost, "/api/profile", alice, gin.H{"company": "ACME"})
		assertStatus(t, w, http.StatusBadRequest)
		var body errorsBody
		decode(t, w, &body)
		if len(body.Errors) != 2 {
			t.Errorf("errors = %+v", body.Errors)
		}
	})

	var profile struct {
		ID     string            `json:"id"`
		Skills []string          `json:"skills"`
		Social map[string]string `json:"social"`
		User   struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"user"`
		Experience []struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"experience"`
	}

	t.Run("プロフィールを作成できること", func(t *testing.T) {
		w := do(t, s, http.MethodPost, "/api/profile", alice, gin.H{
			"status":  "Developer",
			"skills":  "Go, SQL",
			"twitter": "https://twitter.com/alice",
		})
		assertStatus(t, w, http.StatusOK)
		decode(t, w, &profile)
		if len(profile.Skills) != 2 || profile.Social["twitter"] == "" || profile.User.Name != "Alice" {
			t.Errorf("profile = %+v", profile)
		}
	})

	t.Run("一覧とユーザーIDで取得できること", func(t *testing.T) {
		w := do(t, s, http.MethodGet, "/api/profile", "", nil)
		assertStatus(t, w, http.StatusOK)

		w = do(t, s, http.MethodGet, "/api/profile/user/"+profile.User.ID, "", nil)
		assertStatus(t, w, http.StatusOK)

		w = do(t, s, http.MethodGet, "/api/profile/user/"+uuid.NewString(), "", nil)
		assertStatus(t, w, http.StatusBadRequest)
		assertMessage(t, w, "Profile not found")
	})

	t.Run("職歴を追加・削除できること", func(t *testing.T) {
		w := do(t, s, http.MethodPut, "/api/profile/experience", alice, gin.H{"title": "Engineer", "company": "ACME", "from": "2020-04-01"})
		assertStatus(t, w, http.StatusOK)
		w = do(t, s, http.MethodPut, "/api/profile/experience", alice, gin.H{"title": "Lead", "company": "ACME", "from": "2022-04-01"})
		assertStatus(t, w, http.StatusOK)
		decode(t, w, &profile)
		if len(profile.Experience) != 2 || profile.Experience[0].Title != "Lead" {
			t.Fatalf("experience = %+v", profile.Experience)
		}

		w = do(t, s, http.MethodDelete, "/api/profile/experience/"+uuid.NewString(), alice, nil)
		assertStatus(t, w, http.StatusNotFound)
		assertMessage(t, w, "Experience not found")

		w = do(t, s, http.MethodDelete, "/api/profile/experience/"+profile.Experience[1].ID, alice, nil)
		assertStatus(t, w, http.StatusOK)
		decode(t, w, &profile)
		if len(profile.Experience) != 1 || profile.Experience[0].Title != "Lead" {
			t.Errorf("experience = %+v", profile.Experience)
		}
	})

	t.Run("日付の形式が不正な職歴は400となること", func(t *testing.T) {
		w := do(t, s, http.MethodPut, "/api/profile/experience", alice, gin.H{"title": "x", "company": "y", "from": "04/01/2020"})
		assertStatus(t, w, http.StatusBadRequest)
		var body errorsBody
		decode(t, w, &body)
		if len(body.Errors) != 1 || body.Errors[0].Msg != "From date must be YYYY-MM-DD" {
			t.Errorf("errors = %+v", body.Errors)
		}
	})

	t.Run("学歴を追加・削除できること", func(t *testing.T) {
		w := do(t, s, http.MethodPut, "/api/profile/education", alice, gin.H{
			"school": "MIT", "degree": "BS", "fieldofstudy": "CS", "from": "2010-09-01",
		})
		assertStatus(t, w, http.StatusOK)
		var p struct {
			Education []struct {
				ID string `json:"id"`
			} `json:"education"`
		}
		decode(t, w, &p)
		if len(p.Education) != 1 {
			t.Fatalf("education = %+v", p.Education)
		}

		w = do(t, s, http.MethodDelete, "/api/profile/education/"+p.Education[0].ID, alice, nil)
		assertStatus(t, w, http.StatusOK)
	})

	t.Run("アカウントを削除するとトークンの本人情報が取得できなくなること", func(t *testing.T) {
		w := do(t, s, http.MethodPost, "/api/posts", alice, gin.H{"text": "bye"})
		assertStatus(t, w, http.StatusOK)

		w = do(t, s, http.MethodDelete, "/api/profile", alice, nil)
		assertStatus(t, w, http.StatusOK)
		assertMessage(t, w, "User deleted")

		w = do(t, s, http.MethodGet, "/api/auth", alice, nil)
		assertStatus(t, w, http.StatusNotFound)

		w = do(t, s, http.MethodPost, "/api/profile", alice, gin.H{"status": "Developer", "skills": "Go"})
		assertStatus(t, w, http.StatusNotFound)
		assertMessage(t, w, "User not found")

		w = do(t, s, http.MethodGet, "/api/profile", "", nil)
		assertStatus(t, w, http.StatusOK)
		var profiles []any
		decode(t, w, &profiles)
		if len(profiles) != 0 {
			t.Errorf("プロフィール数 = %d, want 0", len(profiles))
		}
	})
}

// TestGitHubRepos はGitHubリポジトリ一覧のプロキシを検証する。
func TestGitHubRepos(t *testing.T) {
	t.Parallel()

	conn, err := db.Open(context.Background(), ":memory:", logging.Discard())
	if err != nil {
		t.Fatalf("インメモリDB接続に失敗: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	tests := []struct {
		name     string
		gh       *fakeGitHub
		wantCode int
		wantBody string
	}{
		{
			name:     "レスポンスがそのまま返ること",
			gh:       &fakeGitHub{body: json.RawMessage(`[{"name":"repo"}]`)},
			wantCode: http.StatusOK,
			wantBody: `[{"name":"repo"}]`,
		},
		{
			name:     "GitHubにユーザーがいない場合は404となること",
			gh:       &fakeGitHub{err: github.ErrProfileNotFound},
			wantCode: http.StatusNotFound,
			wantBody: `{"message":"No Github profile found"}`,
		},
		{
			name:     "通信エラーは500となること",
			gh:       &fakeGitHub{err: errors.New("dial tcp: timeout")},
			wantCode: http.StatusInternalServerError,
			wantBody: middleware.ServerErrorBody,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newServerWithDB(t, conn, tt.gh)
			w := do(t, s, http.MethodGet, "/api/profile/github/octocat", "", nil)
			assertStatus(t, w, tt.wantCode)
			if got := w.Body.String(); got != tt.wantBody {
				t.Errorf("body = %s, want %s", got, tt.wantBody)
			}
		})
	}

	t.Run("GitHubクライアント未指定の場合は既定のクライアントが使われること", func(t *testing.T) {
		s := newServerWithDB(t, conn, nil)
		if _, ok := s.github.(*github.Client); !ok {
			t.Errorf("github = %T, want *github.Client", s.github)
		}
	})
}

// TestHealthAndMetrics はヘルスチェックとメトリクスを検証する。
func TestHealthAndMetrics(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	w := do(t, s, http.MethodGet, "/health", "", nil)
	assertStatus(t, w, http.StatusOK)

	w = do(t, s, http.MethodGet, "/metrics", "", nil)
	assertStatus(t, w, http.StatusOK)
	if !strings.Contains(w.Body.String(), "devconnector_http_requests_total") {
		t.Errorf("メトリクスにリクエスト数が含まれていない:\n%s", w.Body.String())
	}
}

// TestCORS はフロントエンドのオリジンに対するCORSヘッダーを検証する。
func TestCORS(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/posts", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assertStatus(t, w, http.StatusNoContent)
	if got := w.Header().Get("Access-Control-Allow-Headers"); !strings.Contains(got, middleware.HeaderAuthToken) {
		t.Errorf("Access-Control-Allow-Headers = %q", got)
	}
}
