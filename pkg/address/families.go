package address

import (
	"strings"

	"github.com/btcsuite/btcutil/base58"
	"github.com/btcsuite/btcutil/bech32"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"
)

// validators maps a currency symbol to its structural check.
// Token symbols that settle on an EVM chain share the EVM check.
var validators = map[string]func(string) bool{
	"BTC":  func(a string) bool { return base58Check(a, 0x00, 0x05) || bech32Addr(a, "bc") },
	"LTC":  func(a string) bool { return base58Check(a, 0x30, 0x32, 0x05) || bech32Addr(a, "ltc") },
	"DOGE": func(a string) bool { return base58Check(a, 0x1e, 0x16) },
	"DASH": func(a string) bool { return base58Check(a, 0x4c, 0x10) },
	"TRX":  func(a string) bool { return base58Check(a, 0x41) },
	"BCH":  bitcoinCash,
	"ZEC":  zcashTransparent,

	"ETH":   isEVM,
	"ETC":   isEVM,
	"BNB":   isEVM,
	"MATIC": isEVM,
	"AVAX":  isEVM,
	"SHIB":  isEVM,
	"LINK":  isEVM,
	"UNI":   isEVM,
	"AAVE":  isEVM,
	"DAI":   isEVM,
	"USDC":  isEVM,
	"USDT":  isEVM,

	"SOL":  isSolana,
	"XRP":  isRipple,
	"XLM":  isStellar,
	"ATOM": func(a string) bool { return bech32Addr(a, "cosmos") },
	"XMR":  isMonero,
	"ADA":  isCardano,
	"DOT":  isPolkadot,
	"EOS":  isEOS,
	"TON":  isTON,
}

func isEVM(addr string) bool {
	return ethcommon.IsHexAddress(addr)
}

func isSolana(addr string) bool {
	_, err := solana.PublicKeyFromBase58(addr)
	return err == nil
}

// base58Check decodes a base58check address and matches its version
// byte against the currency's allowed set.
func base58Check(addr string, versions ...byte) bool {
	payload, version, err := base58.CheckDecode(addr)
	if err != nil || len(payload) != 20 {
		return false
	}
	for _, v := range versions {
		if version == v {
			return true
		}
	}
	return false
}

func bech32Addr(addr string, hrp string) bool {
	decoded, _, err := bech32.Decode(strings.ToLower(addr))
	return err == nil && decoded == hrp
}

func bitcoinCash(addr string) bool {
	if base58Check(addr, 0x00, 0x05) {
		return true
	}
	// cashaddr, with or without the prefix
	addr = strings.TrimPrefix(strings.ToLower(addr), "bitcoincash:")
	if len(addr) != 42 || (addr[0] != 'q' && addr[0] != 'p') {
		return false
	}
	return isCharset(addr, "qpzry9x8gf2tvdw0s3jn54khce6mua7l")
}

// zcashTransparent accepts t-addresses only; shielded addresses are
// not supported by the swap provider.
func zcashTransparent(addr string) bool {
	if !strings.HasPrefix(addr, "t1") && !strings.HasPrefix(addr, "t3") {
		return false
	}
	// Two-byte version prefix, so CheckDecode leaves 21 payload bytes
	payload, _, err := base58.CheckDecode(addr)
	return err == nil && len(payload) == 21
}

const rippleAlphabet = "rpshnaf39wBUDNEGHJKLM4PQRST7VWXYZ2bcdeCg65jkm8oFqi1tuvAxyz"

func isRipple(addr string) bool {
	if len(addr) < 25 || len(addr) > 35 || addr[0] != 'r' {
		return false
	}
	return isCharset(addr, rippleAlphabet)
}

func isStellar(addr string) bool {
	if len(addr) != 56 || addr[0] != 'G' {
		return false
	}
	return isCharset(addr, "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567")
}

func isMonero(addr string) bool {
	if len(addr) != 95 || (addr[0] != '4' && addr[0] != '8') {
		return false
	}
	return isCharset(addr, base58Alphabet)
}

// isCardano checks prefixes only: Shelley addresses exceed the bech32
// length limit, so a full checksum decode is not possible here.
func isCardano(addr string) bool {
	if strings.HasPrefix(addr, "addr1") {
		return len(addr) >= 58 && isCharset(addr[5:], "qpzry9x8gf2tvdw0s3jn54khce6mua7l")
	}
	if strings.HasPrefix(addr, "DdzFF") || strings.HasPrefix(addr, "Ae2") {
		return isCharset(addr, base58Alphabet)
	}
	return false
}

func isPolkadot(addr string) bool {
	if len(addr) < 46 || len(addr) > 48 || addr[0] != '1' {
		return false
	}
	decoded := base58.Decode(addr)
	return len(decoded) == 35
}

func isEOS(addr string) bool {
	if len(addr) == 0 || len(addr) > 12 {
		return false
	}
	return isCharset(addr, "abcdefghijklmnopqrstuvwxyz12345.")
}

func isTON(addr string) bool {
	if len(addr) != 48 {
		return false
	}
	return isCharset(addr, "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_+/=")
}

const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

func isCharset(s, charset string) bool {
	for _, r := range s {
		if !strings.ContainsRune(charset, r) {
			return false
		}
	}
	return len(s) > 0
}
