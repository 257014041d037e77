package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/boardwalk-dev/boardwalk/db"
	"github.com/boardwalk-dev/boardwalk/internal/auth"
	"github.com/boardwalk-dev/boardwalk/internal/handlers"
	"github.com/boardwalk-dev/boardwalk/internal/locker"
	"github.com/boardwalk-dev/boardwalk/internal/store"
	"github.com/boardwalk-dev/boardwalk/internal/types"
	"github.com/boardwalk-dev/boardwalk/pkg/apierrors"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type RouterSuite struct {
	suite.Suite
	router *gin.Engine
	store  *store.Store
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	database, err := db.Open(db.DriverSQLite, ":memory:")
	s.Require().NoError(err)
	s.Require().NoError(db.Migrate(database))
	s.T().Cleanup(func() {
		if sqlDB, err := database.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	issuer, err := auth.NewIssuer("test-secret", time.Hour)
	s.Require().NoError(err)

	s.store = store.New(database, locker.NewLocal())
	origins := []string{"http://localhost:3000"}
	s.router = NewRouter(Deps{
		Store:          s.store,
		Issuer:         issuer,
		Hub:            handlers.NewHub(s.store.Boards, origins),
		Logger:         zap.NewNop(),
		AllowedOrigins: origins,
		BcryptCost:     bcrypt.MinCost,
	})
}

func (s *RouterSuite) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RouterSuite) decode(w *httptest.ResponseRecorder, v interface{}) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func (s *RouterSuite) errorCode(w *httptest.ResponseRecorder) string {
	var body apierrors.JsonErr
	s.decode(w, &body)
	return body.Code
}

func (s *RouterSuite) register(email string) string {
	w := s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Tester", "email": email, "password": "correct-horse",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var resp types.AuthResponse
	s.decode(w, &resp)
	s.Require().NotEmpty(resp.Token)
	return resp.Token
}

func (s *RouterSuite) createBoard(token string) types.BoardResponse {
	w := s.do(http.MethodPost, "/api/boards", token, map[string]string{"title": "Roadmap"})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var board types.BoardResponse
	s.decode(w, &board)
	return board
}

func (s *RouterSuite) createTask(token, listID, title string) types.TaskResponse {
	w := s.do(http.MethodPost, "/api/tasks", token, map[string]string{"title": title, "listId": listID})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var task types.TaskResponse
	s.decode(w, &task)
	return task
}

func (s *RouterSuite) taskTitles(token, listID string) []string {
	w := s.do(http.MethodGet, "/api/tasks?listId="+listID, token, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var tasks []types.TaskResponse
	s.decode(w, &tasks)
	titles := make([]string, len(tasks))
	for i, t := range tasks {
		s.Equal(i, t.Position)
		titles[i] = t.Title
	}
	return titles
}

func (s *RouterSuite) TestHealth() {
	w := s.do(http.MethodGet, "/api/health", "", nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *RouterSuite) TestUnknownRoute() {
	w := s.do(http.MethodGet, "/api/nope", "", nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal(apierrors.CodeRouteNotFound, s.errorCode(w))
}

func (s *RouterSuite) TestAuthFlow() {
	token := s.register("ada@example.com")

	w := s.do(http.MethodGet, "/api/auth/me", token, nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "ada@example.com")

	w = s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Again", "email": "ADA@example.com", "password": "correct-horse",
	})
	s.Equal(http.StatusConflict, w.Code)
	s.Equal(apierrors.CodeUserAlreadyExists, s.errorCode(w))

	w = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ada@example.com", "password": "correct-horse"})
	s.Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/boards", "", nil)
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal(apierrors.CodeNoToken, s.errorCode(w))

	w = s.do(http.MethodGet, "/api/boards", "garbage", nil)
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal(apierrors.CodeInvalidToken, s.errorCode(w))
}

func (s *RouterSuite) TestBoardHasDefaultLists() {
	token := s.register("ada@example.com")
	board := s.createBoard(token)

	s.Require().Len(board.Lists, len(types.DefaultListTitles))
	for i, list := range board.Lists {
		s.Equal(types.DefaultListTitles[i], list.Title)
		s.Equal(i, list.Position)
	}

	w := s.do(http.MethodGet, "/api/boards", token, nil)
	s.Equal(http.StatusOK, w.Code)
	var boards []types.BoardResponse
	s.decode(w, &boards)
	s.Len(boards, 1)
}

func (s *RouterSuite) TestTaskReorderFlow() {
	token := s.register("ada@example.com")
	board := s.createBoard(token)
	todo, doing := board.Lists[0].ID, board.Lists[1].ID

	for _, title := range []string{"a", "b", "c", "d"} {
		s.createTask(token, todo, title)
	}
	tasks := s.taskTitles(token, todo)
	s.Equal([]string{"a", "b", "c", "d"}, tasks)

	w := s.do(http.MethodGet, "/api/tasks?listId="+todo, token, nil)
	var created []types.TaskResponse
	s.decode(w, &created)
	byTitle := map[string]string{}
	for _, t := range created {
		byTitle[t.Title] = t.ID
	}

	w = s.do(http.MethodPatch, "/api/tasks/"+byTitle["d"]+"/position", token, map[string]interface{}{"position": 0, "listId": todo})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Equal([]string{"d", "a", "b", "c"}, s.taskTitles(token, todo))

	w = s.do(http.MethodPatch, "/api/tasks/"+byTitle["a"]+"/position", token, map[string]interface{}{
		"position": 99, "listId": doing, "sourceListId": todo,
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var moved types.TaskResponse
	s.decode(w, &moved)
	s.Equal(doing, moved.ListID)
	s.Equal(0, moved.Position)
	s.Equal([]string{"d", "b", "c"}, s.taskTitles(token, todo))
	s.Equal([]string{"a"}, s.taskTitles(token, doing))

	w = s.do(http.MethodPatch, "/api/tasks/"+byTitle["b"]+"/position", token, map[string]interface{}{
		"position": 0, "listId": doing, "sourceListId": doing,
	})
	s.Equal(http.StatusConflict, w.Code)
	s.Equal(apierrors.CodePositionConflict, s.errorCode(w))

	w = s.do(http.MethodDelete, "/api/tasks/"+byTitle["d"], token, nil)
	s.Equal(http.StatusNoContent, w.Code)
	s.Equal([]string{"b", "c"}, s.taskTitles(token, todo))

	w = s.do(http.MethodGet, "/api/boards/"+board.ID, token, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var full types.BoardResponse
	s.decode(w, &full)
	s.Len(full.Lists[0].Tasks, 2)
	s.Len(full.Lists[1].Tasks, 1)
}

func (s *RouterSuite) TestListReorderFlow() {
	token := s.register("ada@example.com")
	board := s.createBoard(token)
	done := board.Lists[2].ID

	w := s.do(http.MethodPatch, "/api/lists/"+done+"/position", token, map[string]interface{}{"position": 0})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/lists/board/"+board.ID, token, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var lists []types.ListResponse
	s.decode(w, &lists)
	s.Require().Len(lists, 3)
	s.Equal(done, lists[0].ID)
	s.Equal(board.Lists[0].ID, lists[1].ID)
	s.Equal(board.Lists[1].ID, lists[2].ID)

	w = s.do(http.MethodDelete, "/api/lists/"+lists[1].ID, token, nil)
	s.Equal(http.StatusNoContent, w.Code)

	w = s.do(http.MethodGet, "/api/lists/board/"+board.ID, token, nil)
	s.decode(w, &lists)
	s.Require().Len(lists, 2)
	s.Equal(0, lists[0].Position)
	s.Equal(1, lists[1].Position)
}

func (s *RouterSuite) TestValidation() {
	token := s.register("ada@example.com")
	board := s.createBoard(token)
	listID := board.Lists[0].ID
	task := s.createTask(token, listID, "a")

	w := s.do(http.MethodGet, "/api/boards/not-a-uuid", token, nil)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(apierrors.CodeValidation, s.errorCode(w))

	w = s.do(http.MethodPatch, "/api/tasks/"+task.ID+"/position", token, map[string]interface{}{"position": -1, "listId": listID})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(apierrors.CodeValidation, s.errorCode(w))

	w = s.do(http.MethodPatch, "/api/tasks/"+task.ID+"/position", token, map[string]interface{}{"position": 0})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(apierrors.CodeValidation, s.errorCode(w))
	s.Contains(w.Body.String(), `"listId":"required"`)

	w = s.do(http.MethodPatch, "/api/tasks/"+task.ID+"/position", token, map[string]interface{}{"position": 0, "listId": "not-a-uuid"})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(apierrors.CodeValidation, s.errorCode(w))

	w = s.do(http.MethodPatch, "/api/tasks/"+task.ID+"/position", token, map[string]interface{}{})
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/tasks", token, map[string]string{"title": "x", "listId": listID, "priority": "URGENT"})
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/tasks", token, nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *RouterSuite) TestOwnership() {
	owner := s.register("owner@example.com")
	intruder := s.register("intruder@example.com")
	board := s.createBoard(owner)
	task := s.createTask(owner, board.Lists[0].ID, "secret")

	w := s.do(http.MethodGet, "/api/boards/"+board.ID, intruder, nil)
	s.Equal(http.StatusForbidden, w.Code)
	s.Equal(apierrors.CodeUnauthorizedAccess, s.errorCode(w))

	w = s.do(http.MethodPatch, "/api/tasks/"+task.ID+"/position", intruder, map[string]interface{}{
		"position": 0, "listId": board.Lists[0].ID,
	})
	s.Equal(http.StatusForbidden, w.Code)

	w = s.do(http.MethodDelete, "/api/boards/"+board.ID, intruder, nil)
	s.Equal(http.StatusForbidden, w.Code)

	w = s.do(http.MethodDelete, "/api/boards/"+board.ID, owner, nil)
	s.Equal(http.StatusNoContent, w.Code)

	w = s.do(http.MethodGet, "/api/boards/"+board.ID, owner, nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal(apierrors.CodeNotFound, s.errorCode(w))
}
