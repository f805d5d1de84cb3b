package data

import "encoding/json"

type Employee struct {
	Id               int64  `json:"id,omitempty"` //zero until the store assigns one
	EmployeeName     string `json:"employeeName"`
	EmployeePosition string `json:"employeePosition"`
}

func (e *Employee) MarshalBinary() ([]byte, error) {
	return json.Marshal(e)
}

func (e *Employee) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, e)
}
