package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUserDisplayName(t *testing.T) {
	cases := []struct {
		name string
		user *User
		want string
	}{
		{"full name", &User{FirstName: "Olha", LastName: "Kovalenko"}, "Olha Kovalenko"},
		{"first only", &User{FirstName: "Olha"}, "Olha"},
		{"last only", &User{LastName: "Kovalenko"}, "Kovalenko"},
		{"whitespace only", &User{FirstName: "  ", LastName: " "}, FallbackDisplayName},
		{"empty", &User{}, FallbackDisplayName},
		{"nil", nil, FallbackDisplayName},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, tc.user.DisplayName())
		})
	}
}

func TestAllNotificationTypesIsClosedSet(t *testing.T) {
	require.ElementsMatch(t,
		[]NotificationType{NotificationPriceChange, NotificationNewComment},
		AllNotificationTypes,
	)
}
