package estoque

import "github.com/shopspring/decimal"

// CustoMedioPonderado implementa o custo médio ponderado (serviço de domínio).
// NovoCusto = ((QtdAtual * CustoAtual) + (QtdEntrada * CustoEntrada)) / (QtdAtual + QtdEntrada)
// Com QtdAtual = 0 o resultado é simplesmente o custo da entrada.
func CustoMedioPonderado(qtdAtual int, custoAtual decimal.Decimal, qtdEntrada int, custoEntrada decimal.Decimal) decimal.Decimal {
	atual := decimal.NewFromInt(int64(qtdAtual))
	entrada := decimal.NewFromInt(int64(qtdEntrada))
	soma := atual.Add(entrada)
	if soma.LessThanOrEqual(decimal.Zero) {
		return custoEntrada
	}
	num := atual.Mul(custoAtual).Add(entrada.Mul(custoEntrada))
	return num.Div(soma)
}
