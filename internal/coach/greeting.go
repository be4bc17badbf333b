package coach

import (
	"fmt"
	"strings"

	"github.com/carpenike/fitcoach/internal/models"
	"github.com/carpenike/fitcoach/internal/profile"
	"github.com/carpenike/fitcoach/internal/stats"
)

// Greeting is the first assistant message of a conversation. Returning users
// with a known age, sex and location get a progress summary; everyone else
// gets the onboarding questions.
func Greeting(username string, p profile.Profile, s stats.RollingStats) string {
	if !p.HasBasics() {
		return onboarding(username)
	}

	window := s.WindowDays
	if window <= 0 {
		window = stats.DefaultWindowDays
	}

	var b strings.Builder
	fmt.Fprintf(&b, "오! %s 다시 왔구나 😄\n\n", username)
	if s.ActiveDays == 0 {
		fmt.Fprintf(&b, "아직 최근 %d일 동안 저장된 운동 기록은 없어. 지금이 진짜 1일 차야!🔥\n", window)
	} else {
		fmt.Fprintf(&b, "최근 %d일 기준으로 정리해보면,\n", window)
		fmt.Fprintf(&b, "- 운동한 날: %d일\n", s.ActiveDays)
		fmt.Fprintf(&b, "- 가장 많이 한 운동: %s (누적 %d 단위)\n", models.ExerciseLabel(s.TopExercise), s.TopExerciseAmount)
		fmt.Fprintf(&b, "- 총 운동량: %d 단위 정도야.\n\n", s.TotalAmount)
	}
	b.WriteString("프로필은 대충 이렇게 알고 있어:\n")
	fmt.Fprintf(&b, "- 나이: %d살\n", *p.Age)
	fmt.Fprintf(&b, "- 성별: %s\n", p.Sex.Label())
	fmt.Fprintf(&b, "- 운동하는 동네: %s\n\n", p.Location)

	if s.ActiveDays == 0 {
		b.WriteString("오늘 뭐부터 해볼지 같이 정해볼까?\n")
		b.WriteString("운동 끝나면 **`오늘 운동 기록` 탭 눌러서 오늘 한 운동도 기록해줘!**")
	} else {
		b.WriteString("오늘 몸 상태가 어떤지, 그리고 어떤 운동을 해보고 싶은지 말해줘!\n")
		b.WriteString("참, 운동 끝나면 **`오늘 운동 기록` 탭에 오늘 한 운동 기록** 남겨주면 내가 보기 더 편해 😊")
	}
	return b.String()
}

func onboarding(username string) string {
	return fmt.Sprintf("안녕 %s! 나는 너 전용 AI 체력 코치야 💪\n\n", username) +
		"너를 좀 알아야 제대로 도와줄 수 있어서, 몇 가지만 편하게 말해줘!\n\n" +
		"- 나이는 몇 살이야?\n" +
		"- 성별은? (남 / 여)\n" +
		"- 달리기는 어느 정도야? (예: 10분만 뛰어도 숨차 / 30분은 가능 등)\n" +
		"- 스쿼트는 한 번에 몇 개 정도 할 수 있어?\n" +
		"- 보통 어느 동네에서 운동해? (예: 강남구 대치동)\n\n" +
		"한 번에 길게 써도 되고, 하나씩 나눠서 말해도 돼 😄\n" +
		"그리고 운동 끝나면 **`오늘 운동 기록` 탭에 오늘 한 운동도 꼭 기록해줘!**"
}
