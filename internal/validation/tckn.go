package validation

// ValidTCKN T.C. kimlik numarasının 11 hane ve iki kontrol hanesi kuralına uyduğunu kontrol eder.
func ValidTCKN(s string) bool {
	if len(s) != 11 || s[0] == '0' {
		return false
	}
	var d [11]int
	for i := 0; i < 11; i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
		d[i] = int(s[i] - '0')
	}

	odd := d[0] + d[2] + d[4] + d[6] + d[8]
	even := d[1] + d[3] + d[5] + d[7]

	d10 := ((odd*7-even)%10 + 10) % 10
	if d10 != d[9] {
		return false
	}

	sum := 0
	for i := 0; i < 10; i++ {
		sum += d[i]
	}
	return sum%10 == d[10]
}
