package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"finquest/backend/config"
	"finquest/backend/gamification"
	"finquest/backend/models"
	"finquest/backend/routes"
	"finquest/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, utils.Migrate(db))
	require.NoError(t, utils.SeedContent(db))

	cfg := &config.Config{JWTSecret: "testsecret", ServerPort: "8080"}

	app := fiber.New()
	routes.SetupRoutes(app, db, nil, cfg)
	return app, db
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	return resp, result
}

func registerUser(t *testing.T, app *fiber.App, username string) string {
	t.Helper()

	resp, result := doJSON(t, app, "POST", "/api/auth/register", "", map[string]interface{}{
		"username":         username,
		"email":            username + "@example.com",
		"password":         "password123",
		"experience_level": "beginner",
		"investment_goal":  "savings",
		"monthly_budget":   200,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	token, _ := result["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestRegisterAndLogin(t *testing.T) {
	app, db := setupApp(t)
	registerUser(t, app, "alice")

	// Registration must create the zero-valued progress row.
	var row models.UserProgress
	require.NoError(t, db.Where("user_id = ?", 1).First(&row).Error)
	assert.Equal(t, 0, row.XP)
	assert.Equal(t, 1, row.Level)
	assert.Equal(t, 1, row.Version)

	resp, result := doJSON(t, app, "POST", "/api/auth/login", "", map[string]string{
		"username": "alice",
		"password": "password123",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, result["token"])

	// The login visit starts the streak.
	progressMap, ok := result["progress"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(1), progressMap["streak_days"])
}

func TestLoginWrongPassword(t *testing.T) {
	app, _ := setupApp(t)
	registerUser(t, app, "alice")

	resp, _ := doJSON(t, app, "POST", "/api/auth/login", "", map[string]string{
		"username": "alice",
		"password": "wrong",
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestProgressRequiresAuth(t *testing.T) {
	app, _ := setupApp(t)

	resp, _ := doJSON(t, app, "GET", "/api/progress", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestProfileRoundTrip(t *testing.T) {
	app, _ := setupApp(t)
	token := registerUser(t, app, "alice")

	resp, result := doJSON(t, app, "GET", "/api/user/profile", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "alice", result["username"])
	assert.Equal(t, "beginner", result["experience_level"])

	resp, _ = doJSON(t, app, "PUT", "/api/user/profile", token, map[string]interface{}{
		"experience_level": "advanced",
		"investment_goal":  "retirement",
		"monthly_budget":   500,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	_, result = doJSON(t, app, "GET", "/api/user/profile", token, nil)
	assert.Equal(t, "advanced", result["experience_level"])
	assert.Equal(t, float64(500), result["monthly_budget"])
}

// answersFor builds a fully correct answer sheet straight from the
// stored questions; the API never exposes the correct answers.
func answersFor(t *testing.T, db *gorm.DB, lessonID uint) []map[string]interface{} {
	t.Helper()

	var questions []models.QuizQuestion
	require.NoError(t, db.Where("lesson_id = ?", lessonID).Find(&questions).Error)

	answers := make([]map[string]interface{}, 0, len(questions))
	for _, question := range questions {
		answers = append(answers, map[string]interface{}{
			"question_id": question.ID,
			"answer":      question.CorrectAnswer,
		})
	}
	return answers
}

func TestCompleteLessonFlow(t *testing.T) {
	app, db := setupApp(t)
	token := registerUser(t, app, "alice")

	resp, result := doJSON(t, app, "POST", "/api/lessons/1/complete", token, map[string]interface{}{
		"answers": answersFor(t, db, 1),
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.Equal(t, float64(100), result["score"])

	progressMap := result["progress"].(map[string]interface{})
	// 100 score + 50 base + first-lesson and perfect-quiz bonuses.
	assert.Equal(t, float64(350), progressMap["xp"])
	assert.Equal(t, float64(50), progressMap["token_balance"])
	assert.Equal(t, float64(25), progressMap["daily_goal_progress"])

	notifications := result["notifications"].([]interface{})
	unlocked := make([]string, 0, 2)
	for _, raw := range notifications {
		n := raw.(map[string]interface{})
		if n["type"] == "achievement_unlocked" {
			unlocked = append(unlocked, n["achievement"].(string))
		}
	}
	assert.ElementsMatch(t, []string{"first-lesson", "perfect-quiz"}, unlocked)

	// Completing the same lesson again must not re-award anything.
	resp, result = doJSON(t, app, "POST", "/api/lessons/1/complete", token, map[string]interface{}{
		"answers": answersFor(t, db, 1),
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	progressMap = result["progress"].(map[string]interface{})
	assert.Equal(t, float64(350), progressMap["xp"])
	assert.Equal(t, float64(50), progressMap["token_balance"])
}

func TestCompleteLessonWrongAnswers(t *testing.T) {
	app, _ := setupApp(t)
	token := registerUser(t, app, "alice")

	resp, result := doJSON(t, app, "POST", "/api/lessons/1/complete", token, map[string]interface{}{
		"answers": []map[string]interface{}{},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), result["score"])

	progressMap := result["progress"].(map[string]interface{})
	// 0 score + 50 base + 100 first-lesson bonus.
	assert.Equal(t, float64(150), progressMap["xp"])
}

func TestCompleteLessonDuplicateAnswers(t *testing.T) {
	app, db := setupApp(t)
	token := registerUser(t, app, "alice")

	// Lesson 1 has two questions; repeating the correct answer to the
	// first one must not count as answering the second.
	var question models.QuizQuestion
	require.NoError(t, db.Where("lesson_id = ?", 1).Order("sequence_order").First(&question).Error)

	duplicated := []map[string]interface{}{
		{"question_id": question.ID, "answer": question.CorrectAnswer},
		{"question_id": question.ID, "answer": question.CorrectAnswer},
		{"question_id": question.ID, "answer": question.CorrectAnswer},
	}
	resp, result := doJSON(t, app, "POST", "/api/lessons/1/complete", token, map[string]interface{}{
		"answers": duplicated,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(50), result["score"])

	progressMap := result["progress"].(map[string]interface{})
	// 50 score + 50 base + 100 first-lesson; no perfect-quiz bonus.
	assert.Equal(t, float64(200), progressMap["xp"])
	achievements, _ := progressMap["achievements"].([]interface{})
	assert.Contains(t, achievements, "first-lesson")
	assert.NotContains(t, achievements, "perfect-quiz")
}

func TestLessonListAndDetails(t *testing.T) {
	app, db := setupApp(t)
	token := registerUser(t, app, "alice")

	resp, result := doJSON(t, app, "GET", "/api/lessons/", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	lessons := result["lessons"].([]interface{})
	require.Len(t, lessons, 6)
	first := lessons[0].(map[string]interface{})
	assert.Equal(t, "budgeting-basics", first["slug"])
	assert.Equal(t, false, first["completed"])

	resp, result = doJSON(t, app, "GET", "/api/lessons/1", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	questions := result["questions"].([]interface{})
	require.NotEmpty(t, questions)
	for _, raw := range questions {
		q := raw.(map[string]interface{})
		_, exposed := q["CorrectAnswer"]
		assert.False(t, exposed, "correct answers must stay server-side")
		_, exposed = q["correct_answer"]
		assert.False(t, exposed, "correct answers must stay server-side")
	}

	// Completion shows up in the list.
	doJSON(t, app, "POST", "/api/lessons/1/complete", token, map[string]interface{}{
		"answers": answersFor(t, db, 1),
	})
	_, result = doJSON(t, app, "GET", "/api/lessons/", token, nil)
	first = result["lessons"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, true, first["completed"])
	assert.Equal(t, float64(100), first["score"])
}

func TestStoreRedeem(t *testing.T) {
	app, db := setupApp(t)
	token := registerUser(t, app, "alice")

	resp, result := doJSON(t, app, "GET", "/api/store/items", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NotEmpty(t, result["items"])

	// Balance is zero, the cheapest item costs 100.
	resp, _ = doJSON(t, app, "POST", "/api/store/redeem", token, map[string]interface{}{"item_id": 1})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// Two completed lessons earn 100 tokens.
	for _, lessonID := range []uint{1, 2} {
		resp, _ = doJSON(t, app, "POST", fmt.Sprintf("/api/lessons/%d/complete", lessonID), token, map[string]interface{}{
			"answers": answersFor(t, db, lessonID),
		})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	resp, result = doJSON(t, app, "POST", "/api/store/redeem", token, map[string]interface{}{"item_id": 1})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, result["receipt"])
	assert.Equal(t, float64(0), result["token_balance"])

	var redemption models.Redemption
	require.NoError(t, db.First(&redemption).Error)
	assert.Equal(t, 100, redemption.CostTokens)
}

func TestRedeemFailureKeepsTokens(t *testing.T) {
	app, db := setupApp(t)
	token := registerUser(t, app, "alice")

	for _, lessonID := range []uint{1, 2} {
		resp, _ := doJSON(t, app, "POST", fmt.Sprintf("/api/lessons/%d/complete", lessonID), token, map[string]interface{}{
			"answers": answersFor(t, db, lessonID),
		})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	// Force the receipt insert to fail; the deduction must roll back
	// with it.
	require.NoError(t, db.Migrator().DropTable(&models.Redemption{}))

	resp, _ := doJSON(t, app, "POST", "/api/store/redeem", token, map[string]interface{}{"item_id": 1})
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	_, result := doJSON(t, app, "GET", "/api/progress", token, nil)
	progressMap := result["progress"].(map[string]interface{})
	assert.Equal(t, float64(100), progressMap["token_balance"], "failed redemption must not burn tokens")
}

func TestLoginSurvivesHistoryFailure(t *testing.T) {
	app, db := setupApp(t)
	registerUser(t, app, "alice")

	require.NoError(t, db.Migrator().DropTable(&models.LoginHistory{}))

	resp, result := doJSON(t, app, "POST", "/api/auth/login", "", map[string]string{
		"username": "alice",
		"password": "password123",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, result["token"])
}

func TestInvestmentAction(t *testing.T) {
	app, _ := setupApp(t)
	token := registerUser(t, app, "alice")

	resp, result := doJSON(t, app, "POST", "/api/progress/investment", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	progressMap := result["progress"].(map[string]interface{})
	achievements := progressMap["achievements"].([]interface{})
	assert.Contains(t, achievements, "first-investment")
	assert.Equal(t, float64(100), progressMap["xp"])

	// Repeating the action must not unlock or award again.
	resp, result = doJSON(t, app, "POST", "/api/progress/investment", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	progressMap = result["progress"].(map[string]interface{})
	assert.Equal(t, float64(100), progressMap["xp"])
	assert.Empty(t, result["notifications"])
}

func TestAdminRoutes(t *testing.T) {
	app, db := setupApp(t)
	token := registerUser(t, app, "alice")

	newLesson := map[string]interface{}{
		"Slug":  "etf-basics",
		"Title": "ETF Basics",
	}

	resp, _ := doJSON(t, app, "POST", "/api/admin/lessons", token, newLesson)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	require.NoError(t, db.Model(&models.User{}).Where("id = ?", 1).Update("role", "admin").Error)

	resp, _ = doJSON(t, app, "POST", "/api/admin/lessons", token, newLesson)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var lesson models.Lesson
	require.NoError(t, db.Where("slug = ?", "etf-basics").First(&lesson).Error)
}

func TestGetProgressEndpoint(t *testing.T) {
	app, _ := setupApp(t)
	token := registerUser(t, app, "alice")

	resp, result := doJSON(t, app, "GET", "/api/progress", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	progressMap := result["progress"].(map[string]interface{})
	assert.Equal(t, float64(0), progressMap["xp"])
	assert.Equal(t, float64(1), progressMap["level"])

	catalog := result["achievements"].([]interface{})
	assert.Len(t, catalog, 5)

	// The served level table must be the one the dispatch engine uses.
	expected := gamification.Default().Levels()
	table := result["level_table"].([]interface{})
	require.Len(t, table, len(expected))
	for i, raw := range table {
		row := raw.(map[string]interface{})
		assert.Equal(t, float64(expected[i].Level), row["Level"])
		assert.Equal(t, float64(expected[i].MinXP), row["MinXP"])
	}

	resp, _ = doJSON(t, app, "POST", "/api/progress/visit", token, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
