package validate

import "testing"

func TestJobAction(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{"select caregiver", `{"action":"select_caregiver","application_id":"abc"}`, false},
		{"select without application", `{"action":"select_caregiver"}`, true},
		{"end job bare", `{"action":"end_job"}`, false},
		{"end job with review", `{"action":"end_job","review":{"rating":5,"body":"great"}}`, false},
		{"end job rating too high", `{"action":"end_job","review":{"rating":6}}`, true},
		{"end job rating zero", `{"action":"end_job","review":{"rating":0}}`, true},
		{"end job review missing rating", `{"action":"end_job","review":{"body":"x"}}`, true},
		{"cancel", `{"action":"cancel"}`, false},
		{"cancel with extras", `{"action":"cancel","application_id":"x"}`, true},
		{"unknown action", `{"action":"pause"}`, true},
		{"missing action", `{}`, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := JobAction([]byte(tc.payload))
			if (err != nil) != tc.wantErr {
				t.Errorf("JobAction(%s) error = %v, wantErr %v", tc.payload, err, tc.wantErr)
			}
		})
	}
}

func TestOrderStatus(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{"paid", `{"status":"PAID"}`, false},
		{"shipped", `{"status":"SHIPPED"}`, false},
		{"lowercase", `{"status":"paid"}`, true},
		{"unknown", `{"status":"REFUNDED"}`, true},
		{"missing", `{}`, true},
		{"extra field", `{"status":"PAID","note":"x"}`, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := OrderStatus([]byte(tc.payload))
			if (err != nil) != tc.wantErr {
				t.Errorf("OrderStatus(%s) error = %v, wantErr %v", tc.payload, err, tc.wantErr)
			}
		})
	}
}
