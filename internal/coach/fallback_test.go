package coach

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFallback(t *testing.T) {
	tests := []struct {
		name      string
		utterance string
		wantPart  string
	}{
		{"did not exercise", "오늘 운동 안 했어", "많이 못 움직였어도 괜찮아"},
		{"could not", "어제는 못했어", "많이 못 움직였어도 괜찮아"},
		{"core", "윗몸일으키기 어떻게 해?", "복근 운동은 코어랑"},
		{"running", "조깅 시작하고 싶어", "심폐지구력"},
		{"running verb", "뛰는 게 힘들어", "심폐지구력"},
		{"default", "안녕하세요", "좋은 출발이야"},
		// did-not-exercise outranks the running category
		{"priority", "오늘 달리기 못했어", "많이 못 움직였어도 괜찮아"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fallback(tt.utterance)
			assert.True(t, strings.HasPrefix(got, fallbackBase))
			assert.Contains(t, got, tt.wantPart)
			assert.Equal(t, got, Fallback(tt.utterance))
		})
	}
}

func TestApology(t *testing.T) {
	got := Apology(errors.New("connection reset"))
	assert.Contains(t, got, "AI 코치 호출 중 오류가 났어")
	assert.Contains(t, got, "에러 내용: connection reset")

	assert.Contains(t, Apology(nil), "에러 내용:")
}
