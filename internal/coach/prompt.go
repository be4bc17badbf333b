// Package coach assembles the context handed to the chat provider and runs
// the per-turn coaching pipeline: extract profile hints, merge them, gather
// statistics and reference commentary, call the provider, and fall back to
// canned replies when it is unavailable.
package coach

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/carpenike/fitcoach/internal/llm"
	"github.com/carpenike/fitcoach/internal/models"
	"github.com/carpenike/fitcoach/internal/profile"
	"github.com/carpenike/fitcoach/internal/stats"
)

// History bounds applied when a caller leaves them unset.
const (
	DefaultMaxHistory    = 20
	DefaultHistoryBudget = 8000
)

const persona = `너는 '스포츠 공공데이터 기반 퍼스널 체력 분석 AI 코치'야.
항상 **반말**로, 친구같이 편하지만 **전문적인 트레이너** 느낌으로 말해.

역할:
- 사용자의 나이, 성별, 운동 수준(달리기, 스쿼트, 턱걸이 등), 거주 동네를 자연스럽게 질문하면서 알아가.
- 국민 체력측정/생활체육 통계 같은 걸 참고하는 코치인 것처럼,
  "대략 이 정도면 상/중/하" 식으로 구체적인 피드백을 준다.
- 매번 답변에서:
  1) 첫 문단에서 현재 체력 상태를 한 줄로 요약해줘.
  2) 그 다음에는 bullet 형식으로
     - 현재 체력 레벨 (상/중/하 느낌)
     - 오늘 할 핵심 운동 루틴 (세트 × 반복, 강도, 휴식 구체적으로)
     - 1주일 정도의 짧은 목표
     를 제시해.
  3) 마지막에는 짧게 1~2문장 정도로 동기부여 멘트를 넣어줘 (길게 감성 소설 쓰지 말 것).

- 사용자가 동네나 '마포구 대흥동', '강남구 대치동' 같은 표현을 말하면,
  그 주변에 있을 법한 운동 장소 유형(한강 러닝코스, 동네 공원, 헬스장, 체력인증센터 등)을
  구체적으로 예시로 들어줘.

- 아주 중요:
  답변 중간에 **가끔씩** (예: 2~3번 답변에 한 번 정도) 자연스럽게
  '운동 끝나면 **오늘 운동 기록** 탭에 들어가서 오늘 한 운동 기록을 남겨달라'는
  리마인드 멘트를 섞어줘.
  하지만 매 답변마다 강요하진 말고, 자연스럽게 말투에 섞어서 이야기해.

말투 예시:
- "이 정도면 상체 힘은 꽤 괜찮은 편이야."
- "오늘 루틴은 이렇게 가보자."
- "운동 끝나면 오늘 한 거 잊기 전에 '오늘 운동 기록' 탭에 살짝 적어두면 나중에 내가 분석하기도 좋아!"`

const (
	normPreamble     = "아래는 백엔드에서 계산한 대략적인 체력 기준 비교 결과야. 이 내용을 참고해서 더 구체적으로 피드백해줘.\n"
	facilityPreamble = "아래는 사용자 동네(%s) 주변의 실제 체육시설 목록이야. 장소를 추천할 때 참고해줘.\n"
	unknownValue     = "미확인"
	noneValue        = "없음"
)

// Input is everything BuildPrompt needs for one turn.
type Input struct {
	Profile       profile.Profile
	Stats         stats.RollingStats
	NormComments  []string
	FacilityHints []string
	History       []llm.Message
	MaxHistory    int
	HistoryBudget int
}

// Payload is the system prompt plus the bounded conversation history.
type Payload struct {
	System  string
	History []llm.Message
}

// BuildPrompt assembles the provider payload. It is deterministic.
func BuildPrompt(in Input) Payload {
	var b strings.Builder
	b.WriteString(persona)
	b.WriteString("\n\n")
	b.WriteString(StatsSentence(in.Stats))
	b.WriteString(ProfileSentence(in.Profile))

	if len(in.NormComments) > 0 {
		b.WriteString("\n")
		b.WriteString(normPreamble)
		for _, c := range in.NormComments {
			b.WriteString(c)
		}
	}

	if len(in.FacilityHints) > 0 {
		b.WriteString("\n")
		fmt.Fprintf(&b, facilityPreamble, in.Profile.Location)
		for _, h := range in.FacilityHints {
			b.WriteString("- ")
			b.WriteString(h)
			b.WriteString("\n")
		}
	}

	return Payload{
		System:  b.String(),
		History: TrimHistory(in.History, in.MaxHistory, in.HistoryBudget),
	}
}

// StatsSentence renders the rolling statistics line of the system prompt.
func StatsSentence(s stats.RollingStats) string {
	window := s.WindowDays
	if window <= 0 {
		window = stats.DefaultWindowDays
	}
	top := noneValue
	if s.HasTopExercise() {
		top = models.ExerciseLabel(s.TopExercise)
	}
	return fmt.Sprintf(
		"최근 %d일 기준 요약: 운동한 날 %d일, 가장 많이 한 운동: %s, 해당 누적량: %d 단위, 총 운동량: %d 단위.\n",
		window, s.ActiveDays, top, s.TopExerciseAmount, s.TotalAmount,
	)
}

// ProfileSentence renders the known profile fields, marking missing ones.
func ProfileSentence(p profile.Profile) string {
	age := unknownValue
	if p.Age != nil {
		age = strconv.Itoa(*p.Age)
	}
	sex := unknownValue
	if p.Sex != profile.SexUnknown {
		sex = p.Sex.Label()
	}
	return fmt.Sprintf(
		"현재까지 파악된 프로필: 나이=%s, 성별=%s, 운동 지역=%s, 달리기 수준=%s, 스쿼트 수준=%s, profile_complete=%t.\n",
		age, sex, orUnknown(p.Location), orUnknown(p.RunLevel), orUnknown(p.SquatLevel), p.Complete(),
	)
}

func orUnknown(s string) string {
	if s == "" {
		return unknownValue
	}
	return s
}

// TrimHistory keeps at most maxMessages of the newest messages whose
// combined content fits in runeBudget runes, dropping the oldest first. The
// newest message is always kept even if it alone exceeds the budget.
// Non-positive limits fall back to the defaults.
func TrimHistory(history []llm.Message, maxMessages, runeBudget int) []llm.Message {
	if len(history) == 0 {
		return nil
	}
	if maxMessages <= 0 {
		maxMessages = DefaultMaxHistory
	}
	if runeBudget <= 0 {
		runeBudget = DefaultHistoryBudget
	}

	start := len(history) - 1
	used := utf8.RuneCountInString(history[start].Content)
	for start > 0 && len(history)-start < maxMessages {
		n := utf8.RuneCountInString(history[start-1].Content)
		if used+n > runeBudget {
			break
		}
		used += n
		start--
	}

	return append([]llm.Message(nil), history[start:]...)
}
