package routes_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"os"
	"testing"

	"learnhub/config"
	"learnhub/database"
	"learnhub/models"
	"learnhub/routes"
	"learnhub/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	app *fiber.App
	db  *gorm.DB
	cfg *config.Config

	adminToken string
)

func TestMain(m *testing.M) {
	setup()
	os.Exit(m.Run())
}

func setup() {
	cfg = &config.Config{
		JWTSecret:  "testsecret",
		ServerPort: "8080",
	}

	var err error
	db, err = gorm.Open(sqlite.Open("file:routes?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(err)
	}
	if err := database.Migrate(db); err != nil {
		panic(err)
	}

	app = fiber.New()
	routes.SetupRoutes(app, db, cfg, utils.InitLogger())

	// Seed the admin account. Tokens carry the role, so the admin logs in
	// after the promotion.
	registerUser(nil, "admin", "admin@example.com")
	db.Model(&models.User{}).Where("username = ?", "admin").Update("role", "admin")
	adminToken, _ = login("admin")
}

func request(t *testing.T, method, url, token string, body interface{}) (int, map[string]interface{}) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			if t != nil {
				t.Fatal(err)
			}
			panic(err)
		}
	}

	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		if t != nil {
			t.Fatal(err)
		}
		panic(err)
	}

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	return resp.StatusCode, result
}

// registerUser creates an account through the API and returns (userID, token).
func registerUser(t *testing.T, username, email string) (uint, string) {
	status, result := request(t, "POST", "/api/auth/register", "", map[string]interface{}{
		"username": username,
		"email":    email,
		"password": "password123",
	})
	if t != nil {
		require.Equal(t, fiber.StatusOK, status)
	}
	user := result["user"].(map[string]interface{})
	return uint(user["id"].(float64)), result["token"].(string)
}

func login(username string) (string, uint) {
	_, result := request(nil, "POST", "/api/auth/login", "", map[string]interface{}{
		"username": username,
		"password": "password123",
	})
	user := result["user"].(map[string]interface{})
	return result["token"].(string), uint(user["id"].(float64))
}

// createPublishedCourse builds a free course with one section of two chapters
// and publishes it, returning the course id and the two chapter ids.
func createPublishedCourse(t *testing.T, title string) (uint, []string) {
	status, result := request(t, "POST", "/api/admin/courses", adminToken, map[string]interface{}{
		"title": title,
		"level": "Beginner",
		"price": 0,
		"sections": []map[string]interface{}{
			{
				"title": "Getting Started",
				"chapters": []map[string]interface{}{
					{"type": "Text", "title": "Intro", "content": "welcome"},
					{"type": "Video", "title": "Setup", "videoUrl": "https://v/1"},
				},
			},
		},
	})
	require.Equal(t, fiber.StatusCreated, status)

	data := result["data"].(map[string]interface{})
	course := data["course"].(map[string]interface{})
	courseID := uint(course["ID"].(float64))

	var chapterIDs []string
	for _, s := range course["Sections"].([]interface{}) {
		for _, c := range s.(map[string]interface{})["Chapters"].([]interface{}) {
			chapterIDs = append(chapterIDs, c.(map[string]interface{})["ChapterID"].(string))
		}
	}

	status, _ = request(t, "PUT", fmt.Sprintf("/api/admin/courses/%d", courseID), adminToken,
		map[string]interface{}{"status": "Published"})
	require.Equal(t, fiber.StatusOK, status)

	return courseID, chapterIDs
}

func sectionsPayload(chapterIDs ...string) map[string]interface{} {
	chapters := make([]map[string]interface{}, 0, len(chapterIDs))
	for _, id := range chapterIDs {
		chapters = append(chapters, map[string]interface{}{
			"chapterId": id,
			"completed": true,
		})
	}
	return map[string]interface{}{
		"sections": []map[string]interface{}{
			{"sectionId": "s", "chapters": chapters},
		},
	}
}

func TestProgressFlow(t *testing.T) {
	userID, token := registerUser(t, "alice", "alice@example.com")
	courseID, chapterIDs := createPublishedCourse(t, "Progress Flow Course")
	require.Len(t, chapterIDs, 2)

	status, _ := request(t, "POST", fmt.Sprintf("/api/courses/%d/enroll", courseID), token, nil)
	require.Equal(t, fiber.StatusOK, status)

	// Enrolled courses now lists the course.
	status, result := request(t, "GET", fmt.Sprintf("/api/progress/%d/enrolled-courses", userID), token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, result["courseIds"].([]interface{}), 1)

	// Complete the first chapter: 1 of 2 is 50%.
	url := fmt.Sprintf("/api/progress/%d/courses/%d", userID, courseID)
	status, result = request(t, "PUT", url, token, sectionsPayload(chapterIDs[0]))
	require.Equal(t, fiber.StatusOK, status)
	progressMap := result["progress"].(map[string]interface{})
	assert.Equal(t, float64(50), progressMap["overallProgress"])

	// Same payload again: same percentage.
	status, result = request(t, "PUT", url, token, sectionsPayload(chapterIDs[0]))
	require.Equal(t, fiber.StatusOK, status)
	progressMap = result["progress"].(map[string]interface{})
	assert.Equal(t, float64(50), progressMap["overallProgress"])

	status, result = request(t, "GET", url, token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, result["started"])
}

func TestProgressNotStartedAndUnknownCourse(t *testing.T) {
	userID, token := registerUser(t, "bob", "bob@example.com")
	courseID, _ := createPublishedCourse(t, "Untouched Course")

	status, result := request(t, "GET",
		fmt.Sprintf("/api/progress/%d/courses/%d", userID, courseID), token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, false, result["started"])
	progressMap := result["progress"].(map[string]interface{})
	assert.Equal(t, float64(0), progressMap["overallProgress"])

	status, _ = request(t, "GET",
		fmt.Sprintf("/api/progress/%d/courses/99999", userID), token, nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = request(t, "PUT",
		fmt.Sprintf("/api/progress/%d/courses/99999", userID), token, sectionsPayload("x"))
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestProgressBatchOmitsMissing(t *testing.T) {
	userID, token := registerUser(t, "carol", "carol@example.com")
	courseID, chapterIDs := createPublishedCourse(t, "Batch Course")

	request(t, "POST", fmt.Sprintf("/api/courses/%d/enroll", courseID), token, nil)
	request(t, "PUT", fmt.Sprintf("/api/progress/%d/courses/%d", userID, courseID),
		token, sectionsPayload(chapterIDs[0]))

	status, result := request(t, "POST",
		fmt.Sprintf("/api/progress/%d/courses/batch", userID), token,
		map[string]interface{}{"courseIds": []uint{courseID, 99999}})
	require.Equal(t, fiber.StatusOK, status)

	records := result["progress"].(map[string]interface{})
	assert.Len(t, records, 1)
	_, ok := records[fmt.Sprintf("%d", courseID)]
	assert.True(t, ok)
}

func TestUpdateProgressForbiddenForOtherUser(t *testing.T) {
	victimID, _ := registerUser(t, "dave", "dave@example.com")
	_, intruderToken := registerUser(t, "eve", "eve@example.com")
	courseID, chapterIDs := createPublishedCourse(t, "Forbidden Course")

	status, _ := request(t, "PUT",
		fmt.Sprintf("/api/progress/%d/courses/%d", victimID, courseID),
		intruderToken, sectionsPayload(chapterIDs[0]))
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestUnenrollThenReenroll(t *testing.T) {
	userID, token := registerUser(t, "ivan", "ivan@example.com")
	courseID, chapterIDs := createPublishedCourse(t, "Reenroll Course")

	enrollURL := fmt.Sprintf("/api/courses/%d/enroll", courseID)
	progressURL := fmt.Sprintf("/api/progress/%d/courses/%d", userID, courseID)

	status, _ := request(t, "POST", enrollURL, token, nil)
	require.Equal(t, fiber.StatusOK, status)
	status, _ = request(t, "PUT", progressURL, token, sectionsPayload(chapterIDs[0]))
	require.Equal(t, fiber.StatusOK, status)

	status, _ = request(t, "DELETE", enrollURL, token, nil)
	require.Equal(t, fiber.StatusOK, status)

	// Unenrolling removed both the edge and the progress record.
	status, result := request(t, "GET", fmt.Sprintf("/api/progress/%d/enrolled-courses", userID), token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Empty(t, result["courseIds"])
	status, result = request(t, "GET", progressURL, token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, false, result["started"])

	// Re-enrolling succeeds and progress writes land again.
	status, _ = request(t, "POST", enrollURL, token, nil)
	require.Equal(t, fiber.StatusOK, status)
	status, _ = request(t, "PUT", progressURL, token, sectionsPayload(chapterIDs...))
	require.Equal(t, fiber.StatusOK, status)

	status, result = request(t, "GET", progressURL, token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, result["started"])
	progressMap := result["progress"].(map[string]interface{})
	assert.Equal(t, float64(100), progressMap["overallProgress"])
}

func TestCourseLeaderboard(t *testing.T) {
	firstID, firstToken := registerUser(t, "frank", "frank@example.com")
	secondID, secondToken := registerUser(t, "grace", "grace@example.com")
	courseID, chapterIDs := createPublishedCourse(t, "Leaderboard Course")

	request(t, "POST", fmt.Sprintf("/api/courses/%d/enroll", courseID), firstToken, nil)
	request(t, "POST", fmt.Sprintf("/api/courses/%d/enroll", courseID), secondToken, nil)

	// frank finishes both chapters, grace only one.
	request(t, "PUT", fmt.Sprintf("/api/progress/%d/courses/%d", firstID, courseID),
		firstToken, sectionsPayload(chapterIDs...))
	request(t, "PUT", fmt.Sprintf("/api/progress/%d/courses/%d", secondID, courseID),
		secondToken, sectionsPayload(chapterIDs[0]))

	status, result := request(t, "GET",
		fmt.Sprintf("/api/progress/leaderboard/course/%d", courseID), firstToken, nil)
	require.Equal(t, fiber.StatusOK, status)

	board := result["leaderboard"].([]interface{})
	require.Len(t, board, 2)
	top := board[0].(map[string]interface{})
	assert.Equal(t, float64(firstID), top["userId"])
	assert.Equal(t, "frank", top["username"])
	assert.Equal(t, float64(100), top["score"])
	assert.Equal(t, float64(1), top["rank"])
}

func TestFreeEnrollmentRules(t *testing.T) {
	_, token := registerUser(t, "heidi", "heidi@example.com")
	courseID, _ := createPublishedCourse(t, "Enrollment Rules Course")

	status, _ := request(t, "POST", fmt.Sprintf("/api/courses/%d/enroll", courseID), token, nil)
	require.Equal(t, fiber.StatusOK, status)

	// Enrolling twice conflicts.
	status, _ = request(t, "POST", fmt.Sprintf("/api/courses/%d/enroll", courseID), token, nil)
	assert.Equal(t, fiber.StatusConflict, status)

	status, _ = request(t, "POST", "/api/courses/99999/enroll", token, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}
