package pix

import "fmt"

const (
	crcPolynomial = 0x1021
	crcInitial    = 0xFFFF
)

// table-driven CRC-16 with polynomial 0x1021, MSB first
var crc16Table = func() [256]uint16 {
	var table [256]uint16
	for i := 0; i < 256; i++ {
		crc := uint16(i) << 8
		for bit := 0; bit < 8; bit++ {
			if crc&0x8000 != 0 {
				crc = (crc << 1) ^ crcPolynomial
			} else {
				crc <<= 1
			}
		}
		table[i] = crc
	}
	return table
}()

// Checksum computes the CRC-16/CCITT-FALSE of data
// (poly 0x1021, init 0xFFFF, no final XOR).
func Checksum(data []byte) uint16 {
	var crc uint16 = crcInitial
	for _, b := range data {
		crc = crc16Table[byte(crc>>8)^b] ^ (crc << 8)
	}
	return crc
}

// CRC16 returns the checksum of data as 4 uppercase hex digits.
func CRC16(data string) string {
	return fmt.Sprintf("%04X", Checksum([]byte(data)))
}
