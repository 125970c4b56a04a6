package enum

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type weekday string

var (
	monday = New(weekday("monday"))
	friday = New(weekday("friday"))
)

func Test_ToEnum(t *testing.T) {
	got, err := ToEnum[weekday]("monday")
	require.NoError(t, err)
	require.Equal(t, monday, got)

	_, err = ToEnum[weekday]("someday")
	require.Error(t, err)
}

func Test_ToList(t *testing.T) {
	require.Equal(t, []weekday{friday, monday}, ToList[weekday]())
}
