package analyzer

// System instructions sent to the model. The JSON field names are part of the
// response contract and must stay in sync with response.go.

const classificationPrompt = `Analiza el siguiente documento y clasifícalo en una de estas categorías:

1. "factura" - Si el documento contiene datos económicos/financieros como:
   - Montos, precios, totales
   - Números de factura
   - Información de cliente y proveedor
   - Listado de productos o servicios con precios

2. "informacion" - Si el documento contiene texto general como:
   - Cartas, memorándums
   - Documentos informativos
   - Reportes sin datos financieros detallados
   - Cualquier documento que no sea una factura

Responde ÚNICAMENTE con un JSON en el siguiente formato:
{
    "document_type": "factura" o "informacion",
    "confidence": 0.0 a 1.0
}
`

const invoiceExtractionPrompt = `Extrae los siguientes datos de esta factura:

1. Información del Cliente:
   - Nombre del cliente
   - Dirección del cliente

2. Información del Proveedor:
   - Nombre del proveedor
   - Dirección del proveedor

3. Detalles de la Factura:
   - Número de factura
   - Fecha de la factura
   - Total de la factura
   - Moneda (si se indica, por defecto MXN)

4. Productos/Servicios (lista de items):
   - Cantidad
   - Nombre/Descripción
   - Precio unitario
   - Total del item

Responde ÚNICAMENTE con un JSON en el siguiente formato:
{
    "client_name": "nombre o null",
    "client_address": "dirección o null",
    "provider_name": "nombre o null",
    "provider_address": "dirección o null",
    "invoice_number": "número o null",
    "invoice_date": "fecha como string o null",
    "invoice_total": número o null,
    "currency": "MXN" u otra moneda,
    "products": [
        {
            "quantity": número o null,
            "name": "nombre del producto",
            "unit_price": número o null,
            "total": número o null
        }
    ]
}

Si no puedes extraer algún dato, usa null. Asegúrate de que los números sean valores numéricos, no strings.
`

const infoExtractionPrompt = `Analiza este documento informativo y extrae:

1. Descripción: Una descripción breve del contenido del documento (1-2 oraciones)
2. Resumen: Un resumen más detallado del contenido (3-5 oraciones)
3. Análisis de Sentimiento:
   - Tipo: "positivo", "negativo" o "neutral"
   - Score: Un valor de -1.0 (muy negativo) a 1.0 (muy positivo)
4. Temas Clave: Lista de los temas principales del documento

Responde ÚNICAMENTE con un JSON en el siguiente formato:
{
    "description": "descripción breve",
    "summary": "resumen detallado",
    "sentiment": "positivo", "negativo" o "neutral",
    "sentiment_score": número de -1.0 a 1.0,
    "key_topics": ["tema1", "tema2", "tema3"]
}
`

// User message prefixes, one per call.
const (
	classifyLead       = "Clasifica este documento:"
	extractInvoiceLead = "Extrae los datos de esta factura:"
	extractInfoLead    = "Analiza este documento:"
)

// Character budgets for extracted text sent with each call.
const (
	classifyTextLimit = 4000
	extractTextLimit  = 8000
)
