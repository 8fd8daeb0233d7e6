package testutil_test

import (
	"testing"

	"github.com/jortiz/teammatch/internal/domain"
	"github.com/jortiz/teammatch/internal/testutil"
)

func TestScratchFixturePersistence(t *testing.T) {
	testDB := testutil.NewTestDB(t)

	testutil.NewUserBuilder().WithDisplayName("lowrep").WithReputation(60).Build(t, testDB.DB)
	testutil.NewUserBuilder().WithDisplayName("busy").WithReputation(95).WithAvailability(false).Build(t, testDB.DB)

	var users []domain.User
	if err := testDB.DB.Find(&users).Error; err != nil {
		t.Fatal(err)
	}
	for _, u := range users {
		t.Logf("user=%s rep=%d available=%v", u.DisplayName, u.ReputationScore, u.IsAvailable)
	}
}
