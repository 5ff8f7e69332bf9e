package quiz

import (
	"testing"
)

func TestGrade(t *testing.T) {
	recall := &Recall{Options: []string{"Zestril", "Vasotec", "Altace"}, Answer: "Zestril"}
	tf := &TrueFalse{Statement: "Lisinopril is an ACE inhibitor.", Truth: true}
	ms := &MultiSelect{Options: []string{"A", "B", "C", "D"}, Answers: []string{"A", "C"}}
	match := &Matching{
		Pairs:  []Pair{{"Lisinopril", "Zestril"}, {"Warfarin", "Coumadin"}},
		Rights: []string{"Coumadin", "Zestril"},
	}
	ack := &Pearl{Body: "teaching"}

	tests := []struct {
		name string
		q    Question
		resp Response
		want bool
	}{
		{"choice text", recall, Response{Choice: "zestril "}, true},
		{"choice index", recall, Response{Choice: "1"}, true},
		{"choice wrong index", recall, Response{Choice: "2"}, false},
		{"choice empty", recall, Response{}, false},
		{"true", tf, Response{Choice: "T"}, true},
		{"false", tf, Response{Choice: "false"}, false},
		{"tf garbage", tf, Response{Choice: "maybe"}, false},
		{"multi exact", ms, Response{Selected: []string{"c", "A"}}, true},
		{"multi by index", ms, Response{Selected: []string{"1", "3"}}, true},
		{"multi subset", ms, Response{Selected: []string{"A"}}, false},
		{"multi superset", ms, Response{Selected: []string{"A", "B", "C"}}, false},
		{"match all", match, Response{Pairs: map[string]string{"lisinopril": "Zestril", "Warfarin": "1"}}, true},
		{"match swapped", match, Response{Pairs: map[string]string{"Lisinopril": "Coumadin", "Warfarin": "Zestril"}}, false},
		{"match partial", match, Response{Pairs: map[string]string{"Lisinopril": "Zestril"}}, false},
		{"ack card", ack, Response{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Grade(tt.q, tt.resp); got != tt.want {
				t.Errorf("Grade() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCorrectAnswer(t *testing.T) {
	if got := CorrectAnswer(&TrueFalse{Truth: false}); got != "false" {
		t.Errorf("got %q", got)
	}
	m := &Matching{Pairs: []Pair{{"A", "a"}, {"B", "b"}}}
	if got := CorrectAnswer(m); got != "A = a; B = b" {
		t.Errorf("got %q", got)
	}
}
