package coach

import "strings"

// QuotaNotice is shown alongside a fallback reply.
const QuotaNotice = "⚠️ 현재 AI API 쿼터가 부족해서, 고급 분석 대신 간단 코치 모드로 답변할게!"

const fallbackBase = "지금은 AI 서버 쿼터 문제 때문에 고급 분석은 잠깐 막혀 있어 😢\n" +
	"그래도 코치 입장에서 최대한 정리해서 말해볼게.\n\n"

var fallbackReplies = []struct {
	keywords []string
	reply    string
}{
	{
		keywords: []string{"못했", "안 했", "안했", "운동 안"},
		reply: "오늘은 많이 못 움직였어도 괜찮아. 그런 날도 있는 거지 뭐 😊\n" +
			"지금 자리에서 스쿼트 10개, 팔굽 5개만 해볼까?\n" +
			"그리고 끝나고 **'오늘 운동 기록' 탭에서 방금 한 운동 기록**도 남겨줘! 내일 볼 때 훨씬 좋거든 🔥",
	},
	{
		keywords: []string{"윗몸"},
		reply: "복근 운동은 코어랑 자세 교정에 진짜 중요해.\n" +
			"주 3~4회, 3세트 x 15회 정도 해보자. 세트 사이에는 1분 정도 쉬고!\n" +
			"운동 끝나면 **'오늘 운동 기록' 탭에 오늘 윗몸일으키기 몇 개 했는지 꼭 적어줘** 😄",
	},
	{
		keywords: []string{"달리기", "조깅", "뛰"},
		reply: "달리기는 심폐지구력 올리는 데 최고야.\n" +
			"처음엔 '1분 뛰고 2분 걷기' 이런 식으로 15분만 채우는 걸 목표로 해보자.\n" +
			"다 하고 나서는 **'오늘 운동 기록' 탭에 오늘 뛴 시간이나 느낌** 한 줄 남겨줘. 꾸준함이 제일 중요해 🏃‍♂️",
	},
}

const fallbackDefault = "지금 상태랑 고민 말해준 것만으로도 이미 좋은 출발이야.\n" +
	"가볍게 스트레칭하고, 스쿼트 10개 + 팔벌려뛰기 20개 정도만 해도 몸이 확 달라져.\n" +
	"그리고 끝나면 **'오늘 운동 기록' 탭에 오늘 뭐 했는지 적는 것** 잊지 말기! 🙌"

// Fallback is the canned reply used when the provider is over quota or not
// configured. Categories are checked in order and the first match wins.
func Fallback(utterance string) string {
	text := strings.ToLower(utterance)
	for _, f := range fallbackReplies {
		for _, k := range f.keywords {
			if strings.Contains(text, k) {
				return fallbackBase + f.reply
			}
		}
	}
	return fallbackBase + fallbackDefault
}

// Apology is the reply used when the provider fails for a non-quota reason.
func Apology(err error) string {
	msg := "알 수 없는 오류"
	if err != nil {
		msg = err.Error()
	}
	return "AI 코치 호출 중 오류가 났어 😢\n" +
		"에러 내용: " + msg + "\n\n" +
		"그래도 운동에 대해 궁금한 거 있으면 편하게 물어봐줘. 일반 코치 모드로라도 최대한 도와볼게!"
}
